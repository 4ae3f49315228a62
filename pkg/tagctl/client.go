package tagctl

import (
	"context"
	"sync/atomic"
	"time"
)

// Config параметры клиента контроллера.
type Config struct {
	ReadTimeout  time.Duration    // Таймаут драйвера на одно чтение (~1 с)
	PollInterval time.Duration    // Максимальное ожидание строки в цикле чтения
	Charset      string           // Кодировка контроллера, по умолчанию utf-8
	Specs        Specs            // Таблица команд, по умолчанию DefaultSpecs()
	Opener       Opener           // Открытие порта, по умолчанию OpenSerial
	Logger       func(msg string) // Журнал обмена (>> TX / << RX)
	OnNote       func(Note)       // Статусные заметки для монитора
}

func (c Config) withDefaults() Config {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Specs == nil {
		c.Specs = DefaultSpecs()
	}
	if c.Opener == nil {
		c.Opener = OpenSerial
	}
	return c
}

// Client точка входа для вызывающей стороны (GUI, CLI, сервисы).
// Одновременно выполняется не более одной команды.
type Client struct {
	cfg  Config
	conn *ConnectionManager
	busy atomic.Bool
}

// NewClient создаёт клиент с заданной конфигурацией.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	conn, err := NewConnectionManager(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, conn: conn}, nil
}

// Connect открывает соединение с контроллером.
func (c *Client) Connect(portName string, baudRate int) error {
	return c.conn.Connect(portName, baudRate)
}

// Disconnect закрывает соединение.
func (c *Client) Disconnect() error {
	return c.conn.Disconnect()
}

// IsConnected сообщает, открыт ли порт.
func (c *Client) IsConnected() bool {
	return c.conn.IsConnected()
}

// Connection возвращает менеджер соединения.
func (c *Client) Connection() *ConnectionManager {
	return c.conn
}

// Busy сообщает, выполняется ли сейчас команда.
func (c *Client) Busy() bool {
	return c.busy.Load()
}

// Spec возвращает спецификацию команды.
func (c *Client) Spec(kind CommandKind) (CommandSpec, error) {
	return c.cfg.Specs.Lookup(kind)
}

// RunCommand выполняет команду синхронно. record нужен только для CommandWrite.
func (c *Client) RunCommand(ctx context.Context, kind CommandKind, record *ReactiveRecord) Result {
	if !c.busy.CompareAndSwap(false, true) {
		return rejected(kind, ErrBusy)
	}
	defer c.busy.Store(false)
	return c.run(ctx, kind, record)
}

// Start выполняет команду в фоне и доставляет итог через канал.
// Канал получает ровно одно значение и закрывается.
func (c *Client) Start(ctx context.Context, kind CommandKind, record *ReactiveRecord) <-chan Result {
	out := make(chan Result, 1)
	if !c.busy.CompareAndSwap(false, true) {
		out <- rejected(kind, ErrBusy)
		close(out)
		return out
	}
	go func() {
		defer close(out)
		defer c.busy.Store(false)
		out <- c.run(ctx, kind, record)
	}()
	return out
}

func (c *Client) run(ctx context.Context, kind CommandKind, record *ReactiveRecord) Result {
	spec, err := c.cfg.Specs.Lookup(kind)
	if err != nil {
		return rejected(kind, err)
	}
	s := NewSession(c.conn, spec, record, SessionOptions{
		PollInterval: c.cfg.PollInterval,
		OnNote:       c.cfg.OnNote,
	})
	return s.Run(ctx)
}

// rejected итог команды, не дошедшей до порта.
func rejected(kind CommandKind, err error) Result {
	now := time.Now()
	return Result{
		Command:  kind,
		Outcome:  Outcome{Kind: OutcomeFailure, Reason: err.Error(), Err: err},
		Started:  now,
		Finished: now,
	}
}
