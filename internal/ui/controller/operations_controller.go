package controller

import (
	"context"
	"sync"

	"reactivos/internal/service/reactive"
	"reactivos/internal/ui/viewmodel"
	"reactivos/pkg/tagctl"
)

// OperationsController запускает операции над метками асинхронно и сообщает итог.
type OperationsController struct {
	main *MainController
	svc  *reactive.Service
	tag  *viewmodel.TagViewModel

	mu       sync.Mutex
	cancel   context.CancelFunc
	onResult func(tagctl.Result, reactive.Message)
}

// NewOperationsController создает новый экземпляр OperationsController.
func NewOperationsController(main *MainController, svc *reactive.Service, tag *viewmodel.TagViewModel) *OperationsController {
	return &OperationsController{main: main, svc: svc, tag: tag}
}

// TagViewModel возвращает форму диалога программирования.
func (c *OperationsController) TagViewModel() *viewmodel.TagViewModel {
	return c.tag
}

// SetOnResult устанавливает callback итога операции. Вызывается из фоновой горутины.
func (c *OperationsController) SetOnResult(cb func(tagctl.Result, reactive.Message)) {
	c.mu.Lock()
	c.onResult = cb
	c.mu.Unlock()
}

// CanStart проверяет, можно ли начать операцию (соединение есть, команда не идет).
func (c *OperationsController) CanStart() error {
	if !c.main.IsConnected() {
		return &ValidationError{Message: reactive.Describe(notConnected()).Text}
	}
	c.main.mu.Lock()
	busy := c.main.vm.Busy
	c.main.mu.Unlock()
	if busy {
		return &ValidationError{Message: "Otra operación está en curso, espera a que termine."}
	}
	return nil
}

// ProgramTag записывает в метку данные формы.
func (c *OperationsController) ProgramTag() error {
	rec := c.tag.Record()
	return c.start(tagctl.CommandWrite, &rec)
}

// RegisterAlta регистрирует приход реактива.
func (c *OperationsController) RegisterAlta() error {
	return c.start(tagctl.CommandRead, nil)
}

// RegisterUso регистрирует расход реактива.
func (c *OperationsController) RegisterUso() error {
	return c.start(tagctl.CommandTrack, nil)
}

// RegisterBaja регистрирует списание реактива.
func (c *OperationsController) RegisterBaja() error {
	return c.start(tagctl.CommandOut, nil)
}

// Cancel прерывает выполняемую операцию, если она есть.
func (c *OperationsController) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *OperationsController) start(kind tagctl.CommandKind, rec *tagctl.ReactiveRecord) error {
	if err := c.CanStart(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	c.main.setBusy(true)
	ch := c.svc.Start(ctx, kind, rec)

	go func() {
		res := <-ch
		cancel()

		c.mu.Lock()
		c.cancel = nil
		cb := c.onResult
		c.mu.Unlock()

		msg := reactive.Describe(res)
		if res.Outcome.Kind != tagctl.OutcomeSuccess {
			c.main.monitor.Append(msg.Text)
		}
		if kind == tagctl.CommandWrite && res.Outcome.Kind == tagctl.OutcomeSuccess {
			c.tag.Reset()
		}
		c.main.setBusy(false)

		if cb != nil {
			cb(res, msg)
		}
	}()
	return nil
}

func notConnected() tagctl.Result {
	return tagctl.Result{Outcome: tagctl.Outcome{Kind: tagctl.OutcomeFailure, Err: tagctl.ErrNotConnected}}
}
