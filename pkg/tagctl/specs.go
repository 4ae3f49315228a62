package tagctl

import (
	"fmt"
	"time"
)

// Тайминги прошивки контроллера.
const (
	DefaultBaudRate     = 115200
	DefaultReadTimeout  = 1 * time.Second
	DefaultPollInterval = 250 * time.Millisecond

	DefaultPreWriteDelay      = 2 * time.Second
	DefaultTrackPreWriteDelay = 1500 * time.Millisecond
	DefaultSessionTimeout     = 10 * time.Second
	DefaultTrackTimeout       = 30 * time.Second
)

// FieldDelimiter разделитель полей строки полезной нагрузки.
const FieldDelimiter = ","

// Sentinel подстрока ответа, по которой классификатор судит о ходе команды.
type Sentinel struct {
	Substring string
	Label     string // Человекочитаемое имя для PartialSuccess
	Terminal  bool   // true - завершает сессию успехом
}

// CommandSpec статическое описание команды.
type CommandSpec struct {
	Kind            CommandKind
	WireToken       string
	RequiresPayload bool
	PreWriteDelay   time.Duration
	SessionTimeout  time.Duration
	Sentinels       []Sentinel
	MissingLabel    string // Имя подтверждения, которого не хватает при PartialSuccess
}

// Terminal возвращает первый завершающий маркер команды.
func (s CommandSpec) Terminal() (Sentinel, bool) {
	for _, st := range s.Sentinels {
		if st.Terminal {
			return st, true
		}
	}
	return Sentinel{}, false
}

// WithTiming возвращает копию спецификации с другими таймингами.
func (s CommandSpec) WithTiming(preWriteDelay, sessionTimeout time.Duration) CommandSpec {
	out := s
	out.Sentinels = append([]Sentinel(nil), s.Sentinels...)
	out.PreWriteDelay = preWriteDelay
	out.SessionTimeout = sessionTimeout
	return out
}

// Specs таблица спецификаций по видам команд.
type Specs map[CommandKind]CommandSpec

// Lookup возвращает спецификацию команды.
func (t Specs) Lookup(kind CommandKind) (CommandSpec, error) {
	spec, ok := t[kind]
	if !ok {
		return CommandSpec{}, fmt.Errorf("%w: %s", ErrUnknownCommand, kind)
	}
	return spec, nil
}

// DefaultSpecs возвращает новую копию таблицы команд прошивки.
func DefaultSpecs() Specs {
	return Specs{
		CommandWrite: {
			Kind:            CommandWrite,
			WireToken:       "WRITE",
			RequiresPayload: true,
			PreWriteDelay:   DefaultPreWriteDelay,
			SessionTimeout:  DefaultSessionTimeout,
			Sentinels: []Sentinel{
				{Substring: "Datos guardados exitosamente", Label: "data saved", Terminal: true},
			},
			MissingLabel: "save confirmation",
		},
		CommandRead: {
			Kind:           CommandRead,
			WireToken:      "READ",
			PreWriteDelay:  DefaultPreWriteDelay,
			SessionTimeout: DefaultSessionTimeout,
			Sentinels: []Sentinel{
				{Substring: "Fecha de alta registrada", Label: "alta date registered"},
				{Substring: "Lectura completa", Label: "read complete", Terminal: true},
			},
			MissingLabel: "read completion",
		},
		CommandTrack: {
			Kind:           CommandTrack,
			WireToken:      "TRACK",
			PreWriteDelay:  DefaultTrackPreWriteDelay,
			SessionTimeout: DefaultTrackTimeout,
			Sentinels: []Sentinel{
				{Substring: "Peso:", Label: "weight detected"},
				{Substring: "Datos enviados con éxito", Label: "data sent", Terminal: true},
			},
			MissingLabel: "confirmation",
		},
		CommandOut: {
			Kind:           CommandOut,
			WireToken:      "OUT",
			PreWriteDelay:  DefaultPreWriteDelay,
			SessionTimeout: DefaultSessionTimeout,
			Sentinels: []Sentinel{
				{Substring: "Fecha de baja registrada", Label: "baja date registered"},
				{Substring: "Lectura completa.", Label: "read complete", Terminal: true},
			},
			MissingLabel: "read completion",
		},
	}
}
