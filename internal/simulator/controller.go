// Package simulator эмулирует прошивку контроллера меток на уровне порта.
// Используется в тестах и в режиме -simulate фронтендов.
package simulator

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding"

	"reactivos/pkg/tagctl"
)

var ErrClosed = errors.New("simulator: port is closed")

// Step строка ответа, которую контроллер выдаст через After после команды.
type Step struct {
	After time.Duration
	Line  string
}

// Script сценарии ответов по токенам команд.
// Для команд с полезной нагрузкой отсчёт идёт от получения полезной нагрузки.
type Script map[string][]Step

// DefaultScript поведение прошивки при успешном выполнении всех команд.
func DefaultScript() Script {
	return Script{
		"WRITE": {
			{After: 200 * time.Millisecond, Line: "Acerque la etiqueta al lector..."},
			{After: 900 * time.Millisecond, Line: "Etiqueta detectada"},
			{After: 1200 * time.Millisecond, Line: "Datos guardados exitosamente"},
		},
		"READ": {
			{After: 300 * time.Millisecond, Line: "Etiqueta detectada"},
			{After: 500 * time.Millisecond, Line: "Producto: Metanol"},
			{After: 900 * time.Millisecond, Line: "Fecha de alta registrada"},
			{After: 1600 * time.Millisecond, Line: "Lectura completa"},
		},
		"TRACK": {
			{After: 300 * time.Millisecond, Line: "Etiqueta detectada"},
			{After: 1000 * time.Millisecond, Line: "Peso: 12.3g"},
			{After: 2500 * time.Millisecond, Line: "Datos enviados con éxito"},
		},
		"OUT": {
			{After: 300 * time.Millisecond, Line: "Etiqueta detectada"},
			{After: 800 * time.Millisecond, Line: "Fecha de baja registrada"},
			{After: 1500 * time.Millisecond, Line: "Lectura completa."},
		},
	}
}

// Controller эмулятор контроллера, реализующий tagctl.Port.
type Controller struct {
	// OpenErr возвращается из Open, если задан.
	OpenErr error
	// OnWrite вызывается перед обработкой записи; ошибка имитирует сбой порта.
	OnWrite func(p []byte) error
	// Encoding кодировка строк ответа; nil означает UTF-8.
	Encoding encoding.Encoding

	mu          sync.Mutex
	script      Script
	payloadCmds map[string]bool
	readTimeout time.Duration
	pending     []byte
	partial     []byte
	awaiting    string
	closed      bool
	signal      chan struct{}
	timers      []*time.Timer

	received []string
	records  []tagctl.ReactiveRecord
	resets   int
	opens    int
}

// New создаёт эмулятор со сценарием script.
func New(script Script) *Controller {
	payload := make(map[string]bool)
	for _, spec := range tagctl.DefaultSpecs() {
		if spec.RequiresPayload {
			payload[spec.WireToken] = true
		}
	}
	return &Controller{
		script:      script,
		payloadCmds: payload,
		readTimeout: tagctl.DefaultReadTimeout,
		signal:      make(chan struct{}, 1),
	}
}

// Open реализует tagctl.Opener.
func (c *Controller) Open(name string, baudRate int) (tagctl.Port, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.OpenErr != nil {
		return nil, c.OpenErr
	}
	c.closed = false
	c.opens++
	return c, nil
}

// Read отдаёт накопленные байты или ждёт их не дольше таймаута чтения.
// По таймауту возвращает (0, nil), как go.bug.st/serial.
func (c *Controller) Read(p []byte) (int, error) {
	c.mu.Lock()
	timeout := c.readTimeout
	c.mu.Unlock()

	var expire <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expire = t.C
	}

	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return 0, ErrClosed
		}
		if len(c.pending) > 0 {
			n := copy(p, c.pending)
			c.pending = c.pending[n:]
			c.mu.Unlock()
			return n, nil
		}
		c.mu.Unlock()

		select {
		case <-c.signal:
		case <-expire:
			return 0, nil
		}
	}
}

// Write принимает строки хоста и запускает сценарий по токену команды.
func (c *Controller) Write(p []byte) (int, error) {
	if c.OnWrite != nil {
		if err := c.OnWrite(p); err != nil {
			return 0, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}
	c.partial = append(c.partial, p...)
	for {
		i := bytes.IndexByte(c.partial, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(c.partial[:i]), "\r")
		c.partial = c.partial[i+1:]
		c.handleLocked(line)
	}
	return len(p), nil
}

func (c *Controller) handleLocked(line string) {
	c.received = append(c.received, line)

	if c.awaiting != "" {
		token := c.awaiting
		c.awaiting = ""
		rec, err := tagctl.ParseRecord(line)
		if err != nil {
			c.scheduleLocked([]Step{{Line: "Error: formato de datos inválido"}})
			return
		}
		c.records = append(c.records, rec)
		c.scheduleLocked(c.script[token])
		return
	}

	steps, ok := c.script[line]
	if !ok {
		c.scheduleLocked([]Step{{Line: "Comando no reconocido: " + line}})
		return
	}
	if c.payloadCmds[line] {
		c.awaiting = line
		return
	}
	c.scheduleLocked(steps)
}

func (c *Controller) scheduleLocked(steps []Step) {
	for _, st := range steps {
		line := st.Line
		c.timers = append(c.timers, time.AfterFunc(st.After, func() { c.Emit(line) }))
	}
}

// Emit немедленно выдаёт строку ответа, как это делает println прошивки.
func (c *Controller) Emit(line string) {
	data := []byte(line + "\r\n")
	if c.Encoding != nil {
		if enc, err := c.Encoding.NewEncoder().Bytes(data); err == nil {
			data = enc
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending = append(c.pending, data...)
	c.mu.Unlock()

	select {
	case c.signal <- struct{}{}:
	default:
	}
}

// ResetInputBuffer отбрасывает непрочитанные строки.
func (c *Controller) ResetInputBuffer() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
	c.resets++
	return nil
}

// SetReadTimeout задаёт таймаут одного чтения.
func (c *Controller) SetReadTimeout(t time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readTimeout = t
	return nil
}

// Close закрывает порт и отменяет запланированные ответы.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
	c.closed = true
	c.pending = nil
	c.partial = nil
	c.awaiting = ""

	select {
	case c.signal <- struct{}{}:
	default:
	}
	return nil
}

// Received строки, полученные от хоста.
func (c *Controller) Received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.received...)
}

// Records записи, принятые командой WRITE.
func (c *Controller) Records() []tagctl.ReactiveRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]tagctl.ReactiveRecord(nil), c.records...)
}

// Resets число очисток входного буфера.
func (c *Controller) Resets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}

// Opens число открытий порта.
func (c *Controller) Opens() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens
}

// Pending число непрочитанных байт.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
