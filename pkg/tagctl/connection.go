package tagctl

import (
	"fmt"
	"sync"
	"time"
)

// ConnectionManager владеет единственным соединением с контроллером.
// Никакой другой компонент не открывает и не закрывает порт.
type ConnectionManager struct {
	mu          sync.Mutex
	open        Opener
	codec       codec
	readTimeout time.Duration
	notify      func(Note)
	logf        func(string)

	state    ConnectionState
	port     Port
	reader   *lineReader
	portName string
	baudRate int
}

// NewConnectionManager создаёт менеджер в состоянии Disconnected.
func NewConnectionManager(cfg Config) (*ConnectionManager, error) {
	cfg = cfg.withDefaults()
	c, err := lookupCharset(cfg.Charset)
	if err != nil {
		return nil, err
	}
	return &ConnectionManager{
		open:        cfg.Opener,
		codec:       c,
		readTimeout: cfg.ReadTimeout,
		notify:      cfg.OnNote,
		logf:        cfg.Logger,
	}, nil
}

// Connect открывает порт. Повторный вызов при активном соединении
// возвращает ErrAlreadyConnected и порт не переоткрывает.
func (m *ConnectionManager) Connect(portName string, baudRate int) error {
	var note *Note
	defer func() { m.emit(note) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateConnected {
		return ErrAlreadyConnected
	}
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}

	port, err := m.open(portName, baudRate)
	if err != nil {
		return &ConnectionError{Op: "open", Port: portName, Err: err}
	}
	if err := port.SetReadTimeout(m.readTimeout); err != nil {
		_ = port.Close()
		return &ConnectionError{Op: "open", Port: portName, Err: fmt.Errorf("set read timeout: %w", err)}
	}

	m.port = port
	m.reader = newLineReader(port, m.codec)
	m.portName = portName
	m.baudRate = baudRate
	m.state = StateConnected

	m.log(fmt.Sprintf("Connected to %s at %d baud (%s)", portName, baudRate, m.codec.name))
	note = &Note{Kind: NoteState, Text: "Estado de Conexión: Conectado."}
	return nil
}

// Disconnect закрывает порт. Без активного соединения ничего не делает.
func (m *ConnectionManager) Disconnect() error {
	var note *Note
	defer func() { m.emit(note) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateDisconnected {
		return nil
	}

	err := m.port.Close()
	name := m.portName
	m.port = nil
	m.reader = nil
	m.portName = ""
	m.baudRate = 0
	m.state = StateDisconnected

	m.log(fmt.Sprintf("Disconnected from %s", name))
	note = &Note{Kind: NoteState, Text: "Estado de Conexión: Desconectado."}
	if err != nil {
		return &ConnectionError{Op: "close", Port: name, Err: err}
	}
	return nil
}

// ClearInputBuffer отбрасывает всё, что уже накопилось во входном буфере,
// включая недочитанную строку. Без соединения ничего не делает.
func (m *ConnectionManager) ClearInputBuffer() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateDisconnected {
		return nil
	}
	m.reader.reset()
	if err := m.port.ResetInputBuffer(); err != nil {
		return &IOError{Op: "reset", Err: err}
	}
	return nil
}

// IsConnected сообщает, открыт ли порт.
func (m *ConnectionManager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected
}

// State текущее состояние соединения.
func (m *ConnectionManager) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// PortName имя открытого порта или пустая строка.
func (m *ConnectionManager) PortName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.portName
}

// BaudRate скорость открытого порта или 0.
func (m *ConnectionManager) BaudRate() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baudRate
}

// writeLine отправляет строку с завершающим \n.
func (m *ConnectionManager) writeLine(s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateDisconnected {
		return &IOError{Op: "write", Err: ErrNotConnected}
	}
	data, err := m.codec.encode(s + "\n")
	if err != nil {
		return &IOError{Op: "write", Err: err}
	}
	m.log(">> TX: " + s)
	if _, err := m.port.Write(data); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

// readLine ждёт следующую строку не дольше wait.
func (m *ConnectionManager) readLine(wait time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateDisconnected {
		return "", false, &IOError{Op: "read", Err: ErrNotConnected}
	}
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	if wait > m.readTimeout {
		wait = m.readTimeout
	}
	if err := m.port.SetReadTimeout(wait); err != nil {
		return "", false, &IOError{Op: "read", Err: err}
	}
	line, ok, err := m.reader.next()
	if err != nil {
		return "", false, &IOError{Op: "read", Err: err}
	}
	if ok {
		m.log("<< RX: " + line)
	}
	return line, ok, nil
}

// emit вызывается вне мьютекса: обработчик может обращаться к менеджеру.
func (m *ConnectionManager) emit(n *Note) {
	if n == nil || m.notify == nil {
		return
	}
	if n.At.IsZero() {
		n.At = time.Now()
	}
	m.notify(*n)
}

func (m *ConnectionManager) log(msg string) {
	if m.logf != nil {
		m.logf(msg)
	}
}
