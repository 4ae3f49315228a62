package viewmodel

import (
	"strings"
	"sync"
)

// DefaultMonitorLines сколько строк хранит монитор.
const DefaultMonitorLines = 500

// Monitor журнал монитора состояния (только чтение для пользователя).
// Заметки приходят из горутины сессии, поэтому доступ синхронизирован.
type Monitor struct {
	mu       sync.Mutex
	lines    []string
	limit    int
	onChange func()
}

// NewMonitor создаёт монитор на size строк (0 - DefaultMonitorLines).
func NewMonitor(size int) *Monitor {
	if size <= 0 {
		size = DefaultMonitorLines
	}
	return &Monitor{limit: size}
}

// SetOnChange устанавливает callback, вызываемый после каждого добавления.
func (m *Monitor) SetOnChange(cb func()) {
	m.mu.Lock()
	m.onChange = cb
	m.mu.Unlock()
}

// Append добавляет строку, вытесняя самые старые.
func (m *Monitor) Append(line string) {
	m.mu.Lock()
	m.lines = append(m.lines, line)
	if over := len(m.lines) - m.limit; over > 0 {
		m.lines = append(m.lines[:0], m.lines[over:]...)
	}
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Lines возвращает копию строк.
func (m *Monitor) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// Text строки монитора через CRLF для текстового поля Windows.
func (m *Monitor) Text() string {
	return strings.Join(m.Lines(), "\r\n")
}

// Clear очищает монитор.
func (m *Monitor) Clear() {
	m.mu.Lock()
	m.lines = nil
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}
