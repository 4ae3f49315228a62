package tagctl

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected     = errors.New("tagctl: controller is not connected")
	ErrAlreadyConnected = errors.New("tagctl: controller is already connected")
	ErrBusy             = errors.New("tagctl: another command is in progress")
	ErrMissingPayload   = errors.New("tagctl: command requires a reactive record")
	ErrFieldDelimiter   = errors.New("tagctl: field contains the wire delimiter")
	ErrFieldCount       = errors.New("tagctl: payload must contain exactly 7 fields")
	ErrUnknownCommand   = errors.New("tagctl: unknown command")
)

// ConnectionError описывает сбой открытия или закрытия порта.
type ConnectionError struct {
	Op   string // "open" или "close"
	Port string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("tagctl: %s %s: %v", e.Op, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IOError описывает сбой чтения или записи посреди сессии.
// После такой ошибки порт может быть неработоспособен, вызывающему
// следует переподключиться.
type IOError struct {
	Op  string // "write" или "read"
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("tagctl: %s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FieldError указывает поле записи, нарушающее формат полезной нагрузки.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("tagctl: field %s (%q): %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
