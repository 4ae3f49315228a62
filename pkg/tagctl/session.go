package tagctl

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SessionState состояние автомата одной команды.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionBufferCleared
	SessionSent
	SessionReading
	SessionSucceeded
	SessionPartialSucceeded
	SessionFailed
	SessionTimedOut
	SessionCancelled
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "Idle"
	case SessionBufferCleared:
		return "BufferCleared"
	case SessionSent:
		return "Sent"
	case SessionReading:
		return "Reading"
	case SessionSucceeded:
		return "Succeeded"
	case SessionPartialSucceeded:
		return "PartialSucceeded"
	case SessionFailed:
		return "Failed"
	case SessionTimedOut:
		return "TimedOut"
	case SessionCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Terminal сообщает, что состояние конечное.
func (s SessionState) Terminal() bool {
	return s >= SessionSucceeded
}

// SessionOptions параметры выполнения сессии.
type SessionOptions struct {
	PollInterval time.Duration
	OnNote       func(Note)
}

// Session выполняет одну команду: очистка буфера, отправка, чтение
// ответа до завершающего маркера или дедлайна. Используется один раз.
type Session struct {
	conn       *ConnectionManager
	spec       CommandSpec
	record     *ReactiveRecord
	poll       time.Duration
	notify     func(Note)
	classifier *Classifier

	mu         sync.Mutex
	state      SessionState
	transcript []ResponseLine
}

// NewSession готовит сессию команды. record нужен только для команд с полезной нагрузкой.
func NewSession(conn *ConnectionManager, spec CommandSpec, record *ReactiveRecord, opts SessionOptions) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Session{
		conn:       conn,
		spec:       spec,
		record:     record,
		poll:       opts.PollInterval,
		notify:     opts.OnNote,
		classifier: NewClassifier(spec),
	}
}

// State текущее состояние автомата.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run выполняет команду и возвращает итог с расшифровкой.
// Все ошибки разрешаются внутри сессии и попадают в Outcome.
func (s *Session) Run(ctx context.Context) Result {
	res := Result{Command: s.spec.Kind, Started: time.Now()}
	res.Outcome = s.run(ctx)
	res.Finished = time.Now()

	s.mu.Lock()
	res.Transcript = append([]ResponseLine(nil), s.transcript...)
	s.mu.Unlock()

	s.emit(Note{Kind: NoteOutcome, Text: fmt.Sprintf("%s: %s", s.spec.WireToken, res.Outcome)})
	return res
}

func (s *Session) run(ctx context.Context) Outcome {
	// 1. Idle -> BufferCleared
	if !s.conn.IsConnected() {
		return s.fail(ErrNotConnected)
	}
	if s.spec.RequiresPayload && s.record == nil {
		return s.fail(ErrMissingPayload)
	}
	if err := ctx.Err(); err != nil {
		return s.cancel(err)
	}
	if err := s.conn.ClearInputBuffer(); err != nil {
		return s.fail(err)
	}
	s.setState(SessionBufferCleared)

	// 2. BufferCleared -> Sent
	if err := s.conn.writeLine(s.spec.WireToken); err != nil {
		return s.fail(err)
	}
	s.emit(Note{Kind: NoteSent, Text: fmt.Sprintf("Enviando comando '%s'...", s.spec.WireToken)})

	if err := wait(ctx, s.spec.PreWriteDelay); err != nil {
		return s.cancel(err)
	}
	if s.spec.RequiresPayload {
		payload := EncodeRecord(*s.record)
		if err := s.conn.writeLine(payload); err != nil {
			return s.fail(err)
		}
		s.emit(Note{Kind: NoteSent, Text: "Datos enviados: " + payload})
	}
	s.setState(SessionSent)

	// 3. Sent -> Reading
	deadline := time.Now().Add(s.spec.SessionTimeout)
	s.setState(SessionReading)

	// 4. Reading loop
	for {
		if err := ctx.Err(); err != nil {
			return s.cancel(err)
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			out := s.classifier.Expired()
			if out.Kind == OutcomePartialSuccess {
				s.setState(SessionPartialSucceeded)
			} else {
				s.setState(SessionTimedOut)
			}
			return out
		}

		line, ok, err := s.conn.readLine(min(s.poll, remaining))
		if err != nil {
			return s.fail(err)
		}
		if !ok {
			continue
		}

		s.mu.Lock()
		s.transcript = append(s.transcript, ResponseLine{Text: line, At: time.Now()})
		s.mu.Unlock()

		v := s.classifier.Classify(line)
		s.emit(Note{Kind: NoteLine, Text: line})
		for _, m := range v.Matched {
			if !m.Terminal {
				s.emit(Note{Kind: NoteMarker, Text: line, Marker: m.Label})
			}
		}
		if v.Terminal {
			s.setState(SessionSucceeded)
			return s.classifier.Success()
		}
	}
}

func (s *Session) fail(err error) Outcome {
	s.setState(SessionFailed)
	return Outcome{Kind: OutcomeFailure, Reason: err.Error(), Err: err, Markers: s.classifier.Markers()}
}

func (s *Session) cancel(err error) Outcome {
	s.setState(SessionCancelled)
	return Outcome{Kind: OutcomeCancelled, Reason: err.Error(), Err: err, Markers: s.classifier.Markers()}
}

func (s *Session) setState(st SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) emit(n Note) {
	if s.notify == nil {
		return
	}
	n.Command = s.spec.Kind
	if n.At.IsZero() {
		n.At = time.Now()
	}
	s.notify(n)
}

// wait приостанавливает сессию на d с учётом отмены контекста.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
