package ports

import (
	"context"

	"reactivos/pkg/tagctl"
)

// TagController определяет интерфейс контроллера меток.
// Реализуется *tagctl.Client; в тестах подменяется фейком.
type TagController interface {
	Connect(portName string, baudRate int) error
	Disconnect() error
	IsConnected() bool
	Busy() bool

	// RunCommand выполняет команду синхронно
	RunCommand(ctx context.Context, kind tagctl.CommandKind, record *tagctl.ReactiveRecord) tagctl.Result

	// Start выполняет команду в фоне; канал получает один итог и закрывается
	Start(ctx context.Context, kind tagctl.CommandKind, record *tagctl.ReactiveRecord) <-chan tagctl.Result
}

var _ TagController = (*tagctl.Client)(nil)
