package reactive

import (
	"errors"

	"reactivos/pkg/tagctl"
)

// Severity определяет вид сообщения пользователю (иконка диалога, код выхода CLI).
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Title заголовок диалога для сообщения.
func (s Severity) Title() string {
	switch s {
	case SeverityInfo:
		return "Éxito"
	case SeverityWarning:
		return "Advertencia"
	default:
		return "Error"
	}
}

// Message сообщение пользователю по итогу операции.
type Message struct {
	Severity Severity
	Text     string
}

const (
	msgNotConnected     = "Primero debes establecer conexión con el sistema."
	MsgConnectFailed    = "No se pudo establecer conexión con el sistema."
	MsgDisconnectFailed = "No se pudo desconectar del sistema."
)

type outcomeTexts struct {
	success string
	partial string
	noData  string
	failure string
}

var texts = map[tagctl.CommandKind]outcomeTexts{
	tagctl.CommandWrite: {
		success: "Etiqueta programada correctamente.",
		partial: "Hubo un problema al programar la etiqueta.",
		noData:  "Hubo un problema al programar la etiqueta.",
		failure: "Hubo un problema al programar la etiqueta.",
	},
	tagctl.CommandRead: {
		success: "Datos registrados y enviados a Firebase correctamente.",
		partial: "Fecha de alta registrada con éxito.",
		noData:  "No se leyeron o mostraron datos de la etiqueta.",
		failure: "No se leyeron o mostraron datos de la etiqueta.",
	},
	tagctl.CommandTrack: {
		success: "Uso del reactivo registrado y enviado a Firebase.",
		partial: "Confirmación de Firebase no recibida para el uso del reactivo.",
		noData:  "No se completó el registro de uso.",
		failure: "No se completó el registro de uso.",
	},
	tagctl.CommandOut: {
		success: "Baja registrada y enviada a Firebase correctamente.",
		partial: "No se completó el registro de baja del reactivo.",
		noData:  "No se completó el registro de baja del reactivo.",
		failure: "No se completó el registro de baja del reactivo.",
	},
}

var markerTexts = map[tagctl.CommandKind]string{
	tagctl.CommandRead:  "Fecha de alta registrada con éxito.",
	tagctl.CommandTrack: "Peso detectado.",
	tagctl.CommandOut:   "Fecha de baja registrada con éxito.",
}

// Describe переводит итог команды в сообщение для оператора.
func Describe(res tagctl.Result) Message {
	err := res.Outcome.Err
	switch {
	case errors.Is(err, tagctl.ErrNotConnected):
		return Message{SeverityError, msgNotConnected}
	case errors.Is(err, tagctl.ErrBusy):
		return Message{SeverityWarning, "Otra operación está en curso, espera a que termine."}
	case errors.Is(err, tagctl.ErrFieldDelimiter):
		var fe *tagctl.FieldError
		if errors.As(err, &fe) {
			return Message{SeverityError, "El campo " + fe.Field + " no puede contener comas."}
		}
	}

	t := texts[res.Command]
	switch res.Outcome.Kind {
	case tagctl.OutcomeSuccess:
		return Message{SeverityInfo, t.success}
	case tagctl.OutcomePartialSuccess:
		return Message{SeverityWarning, t.partial}
	case tagctl.OutcomeTimeout:
		return Message{SeverityWarning, t.noData}
	case tagctl.OutcomeCancelled:
		return Message{SeverityWarning, "Operación cancelada."}
	default:
		return Message{SeverityError, t.failure}
	}
}

// MonitorText строка монитора для заметки сессии. ok=false - заметку не показывать.
func MonitorText(n tagctl.Note) (string, bool) {
	switch n.Kind {
	case tagctl.NoteState, tagctl.NoteSent:
		return n.Text, true
	case tagctl.NoteLine:
		return n.Text, n.Text != ""
	case tagctl.NoteMarker:
		if s, ok := markerTexts[n.Command]; ok {
			return s, true
		}
		return n.Text, true
	default:
		return "", false
	}
}
