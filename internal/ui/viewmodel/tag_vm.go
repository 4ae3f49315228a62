package viewmodel

import (
	"reactivos/pkg/tagctl"
)

// TagViewModel поля диалога "Programar Etiqueta".
type TagViewModel struct {
	Producto     string
	Numero       string
	Marca        string
	Codigo       string
	Presentacion string
	Lote         string
	Vencimiento  string
}

// NewTagViewModel создаёт пустую форму.
func NewTagViewModel() *TagViewModel {
	return &TagViewModel{}
}

// Record переводит форму в запись реактива, обрезая пробелы по краям.
func (vm *TagViewModel) Record() tagctl.ReactiveRecord {
	return tagctl.ReactiveRecord{
		Producto:     vm.Producto,
		Numero:       vm.Numero,
		Marca:        vm.Marca,
		Codigo:       vm.Codigo,
		Presentacion: vm.Presentacion,
		Lote:         vm.Lote,
		Vencimiento:  vm.Vencimiento,
	}.Trimmed()
}

// Reset очищает форму после успешной записи.
func (vm *TagViewModel) Reset() {
	*vm = TagViewModel{}
}
