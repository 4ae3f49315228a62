// Package reactive реализует операции оператора над метками реактивов:
// программирование метки, регистрацию прихода, расхода и списания.
package reactive

import (
	"context"
	"time"

	"reactivos/internal/domain/ports"
	"reactivos/pkg/tagctl"
)

// Service выполняет операции через контроллер меток.
type Service struct {
	ctl ports.TagController
	log ports.Logger
}

// NewService создает новый экземпляр Service
func NewService(ctl ports.TagController, log ports.Logger) *Service {
	if log == nil {
		log = ports.NopLogger{}
	}
	return &Service{ctl: ctl, log: log}
}

// ProgramTag записывает запись реактива в метку (WRITE).
// Запись с запятой в поле отклоняется без обращения к порту.
func (s *Service) ProgramTag(ctx context.Context, rec tagctl.ReactiveRecord) tagctl.Result {
	if err := tagctl.ValidateRecord(rec); err != nil {
		return s.finish(rejected(tagctl.CommandWrite, err))
	}
	return s.finish(s.ctl.RunCommand(ctx, tagctl.CommandWrite, &rec))
}

// RegisterAlta регистрирует приход реактива (READ).
func (s *Service) RegisterAlta(ctx context.Context) tagctl.Result {
	return s.finish(s.ctl.RunCommand(ctx, tagctl.CommandRead, nil))
}

// RegisterUso регистрирует расход реактива по весу (TRACK).
func (s *Service) RegisterUso(ctx context.Context) tagctl.Result {
	return s.finish(s.ctl.RunCommand(ctx, tagctl.CommandTrack, nil))
}

// RegisterBaja регистрирует списание реактива (OUT).
func (s *Service) RegisterBaja(ctx context.Context) tagctl.Result {
	return s.finish(s.ctl.RunCommand(ctx, tagctl.CommandOut, nil))
}

// Run выполняет операцию по виду команды. record нужен только для WRITE.
func (s *Service) Run(ctx context.Context, kind tagctl.CommandKind, rec *tagctl.ReactiveRecord) tagctl.Result {
	if kind == tagctl.CommandWrite && rec != nil {
		return s.ProgramTag(ctx, *rec)
	}
	return s.finish(s.ctl.RunCommand(ctx, kind, rec))
}

// Start выполняет операцию в фоне. Канал получает один итог и закрывается.
func (s *Service) Start(ctx context.Context, kind tagctl.CommandKind, rec *tagctl.ReactiveRecord) <-chan tagctl.Result {
	out := make(chan tagctl.Result, 1)

	if kind == tagctl.CommandWrite && rec != nil {
		if err := tagctl.ValidateRecord(*rec); err != nil {
			out <- s.finish(rejected(kind, err))
			close(out)
			return out
		}
	}

	in := s.ctl.Start(ctx, kind, rec)
	go func() {
		defer close(out)
		for res := range in {
			out <- s.finish(res)
		}
	}()
	return out
}

// finish журналирует итог команды.
func (s *Service) finish(res tagctl.Result) tagctl.Result {
	l := s.log.With("command", res.Command.String())
	switch res.Outcome.Kind {
	case tagctl.OutcomeSuccess:
		l.Info("Команда выполнена за %v, строк ответа: %d", res.Duration().Round(time.Millisecond), len(res.Lines()))
	case tagctl.OutcomePartialSuccess, tagctl.OutcomeTimeout, tagctl.OutcomeCancelled:
		l.Warn("Команда завершена: %s", res.Outcome)
	default:
		l.Error("Ошибка команды: %v", res.Outcome.Err)
	}
	return res
}

func rejected(kind tagctl.CommandKind, err error) tagctl.Result {
	now := time.Now()
	return tagctl.Result{
		Command:  kind,
		Outcome:  tagctl.Outcome{Kind: tagctl.OutcomeFailure, Reason: err.Error(), Err: err},
		Started:  now,
		Finished: now,
	}
}
