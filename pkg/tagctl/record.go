package tagctl

import (
	"strings"
)

// RecordFieldNames имена полей записи в порядке передачи.
var RecordFieldNames = []string{"Producto", "Número", "Marca", "Código", "Presentación", "Lote", "Vencimiento"}

// ReactiveRecord данные реактива для программирования метки.
type ReactiveRecord struct {
	Producto     string
	Numero       string
	Marca        string
	Codigo       string
	Presentacion string
	Lote         string
	Vencimiento  string
}

// Fields возвращает значения полей в порядке передачи.
func (r ReactiveRecord) Fields() []string {
	return []string{r.Producto, r.Numero, r.Marca, r.Codigo, r.Presentacion, r.Lote, r.Vencimiento}
}

// Trimmed возвращает копию записи без пробелов по краям полей.
func (r ReactiveRecord) Trimmed() ReactiveRecord {
	f := r.Fields()
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
	}
	out, _ := RecordFromFields(f)
	return out
}

// RecordFromFields собирает запись из значений в порядке передачи.
func RecordFromFields(fields []string) (ReactiveRecord, error) {
	if len(fields) != len(RecordFieldNames) {
		return ReactiveRecord{}, ErrFieldCount
	}
	return ReactiveRecord{
		Producto:     fields[0],
		Numero:       fields[1],
		Marca:        fields[2],
		Codigo:       fields[3],
		Presentacion: fields[4],
		Lote:         fields[5],
		Vencimiento:  fields[6],
	}, nil
}

// EncodeRecord склеивает поля через запятую без экранирования.
// Поля, содержащие запятую, сделают строку неоднозначной: проверка
// остаётся на вызывающей стороне (см. ValidateRecord).
func EncodeRecord(r ReactiveRecord) string {
	return strings.Join(r.Fields(), FieldDelimiter)
}

// ParseRecord разбирает строку полезной нагрузки так же, как прошивка.
func ParseRecord(line string) (ReactiveRecord, error) {
	return RecordFromFields(strings.Split(line, FieldDelimiter))
}

// ValidateRecord проверяет, что ни одно поле не содержит разделитель.
func ValidateRecord(r ReactiveRecord) error {
	for i, v := range r.Fields() {
		if strings.Contains(v, FieldDelimiter) {
			return &FieldError{Field: RecordFieldNames[i], Value: v, Err: ErrFieldDelimiter}
		}
	}
	return nil
}
