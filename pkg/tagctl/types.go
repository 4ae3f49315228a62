package tagctl

import (
	"fmt"
	"strings"
	"time"
)

// ConnectionState состояние соединения с контроллером.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	default:
		return "Disconnected"
	}
}

// CommandKind вид команды контроллеру.
type CommandKind int

const (
	CommandWrite CommandKind = iota // Программирование метки
	CommandRead                     // Регистрация прихода (alta)
	CommandTrack                    // Регистрация расхода (взвешивание)
	CommandOut                      // Списание (baja)
)

// AllCommands перечисляет команды в порядке объявления.
var AllCommands = []CommandKind{CommandWrite, CommandRead, CommandTrack, CommandOut}

func (k CommandKind) String() string {
	switch k {
	case CommandWrite:
		return "WRITE"
	case CommandRead:
		return "READ"
	case CommandTrack:
		return "TRACK"
	case CommandOut:
		return "OUT"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// ParseCommandKind разбирает имя команды без учёта регистра.
func ParseCommandKind(s string) (CommandKind, error) {
	for _, k := range AllCommands {
		if strings.EqualFold(strings.TrimSpace(s), k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// OutcomeKind итог сессии.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomePartialSuccess
	OutcomeFailure
	OutcomeTimeout
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "Success"
	case OutcomePartialSuccess:
		return "PartialSuccess"
	case OutcomeFailure:
		return "Failure"
	case OutcomeTimeout:
		return "Timeout"
	case OutcomeCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome итоговый результат ровно одной сессии. После создания не меняется.
type Outcome struct {
	Kind    OutcomeKind
	Reason  string   // Пояснение для PartialSuccess и Failure
	Markers []string // Метки информационных маркеров, замеченных до дедлайна
	Missing string   // Подстрока завершающего маркера, которого не дождались
	Err     error    // Типизированная ошибка для Failure и Cancelled
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return o.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", o.Kind, o.Reason)
}

// ResponseLine одна строка, полученная от контроллера.
type ResponseLine struct {
	Text string
	At   time.Time
}

// Result итог сессии вместе с накопленной расшифровкой обмена.
type Result struct {
	Command    CommandKind
	Outcome    Outcome
	Transcript []ResponseLine
	Started    time.Time
	Finished   time.Time
}

// Lines возвращает непустые строки расшифровки в порядке поступления.
func (r Result) Lines() []string {
	lines := make([]string, 0, len(r.Transcript))
	for _, l := range r.Transcript {
		if l.Text != "" {
			lines = append(lines, l.Text)
		}
	}
	return lines
}

// Duration длительность сессии.
func (r Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// NoteKind тип статусной заметки.
type NoteKind int

const (
	NoteState   NoteKind = iota // Смена состояния соединения
	NoteSent                    // Отправлена команда или полезная нагрузка
	NoteLine                    // Получена строка
	NoteMarker                  // Строка совпала с информационным маркером
	NoteOutcome                 // Сессия завершена
)

// Note инкрементальная заметка для живого отображения на мониторе.
type Note struct {
	Kind    NoteKind
	Command CommandKind
	Text    string
	Marker  string
	At      time.Time
}
