package ports

// Logger определяет интерфейс для абстракции логирования.
// Реализация находится в слое Infrastructure (zerolog).
type Logger interface {
	// Debug выводит отладочную информацию
	Debug(msg string, args ...interface{})

	// Info выводит информационные сообщения
	Info(msg string, args ...interface{})

	// Warn выводит предупреждения
	Warn(msg string, args ...interface{})

	// Error выводит ошибки
	Error(msg string, args ...interface{})

	// Fatal выводит критические ошибки и завершает программу
	Fatal(msg string, args ...interface{})

	// Printf форматированный вывод (для совместимости)
	Printf(format string, args ...interface{})

	// With возвращает логгер с дополнительным полем контекста
	With(key string, value interface{}) Logger
}

// NopLogger логгер, который ничего не выводит.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{}) {}
func (NopLogger) Warn(string, ...interface{}) {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}
func (NopLogger) Printf(string, ...interface{}) {}
func (n NopLogger) With(string, interface{}) Logger { return n }
