// Package monitor следит за списком последовательных портов системы.
package monitor

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"reactivos/internal/domain/ports"
)

// DefaultPollInterval интервал опроса списка портов по умолчанию
const DefaultPollInterval = 3 * time.Second

// Service реализует сервис наблюдения за COM-портами
type Service struct {
	list           func() ([]string, error)
	config         Config
	log            ports.Logger
	known          []string
	ctx            context.Context
	cancel         context.CancelFunc
	mutex          sync.Mutex
	isPaused       bool
	updateCallback func([]string)
}

// Config содержит конфигурацию опроса
type Config struct {
	PollInterval time.Duration // Интервал опроса
	InitialDelay time.Duration // Пауза перед первым опросом
}

// NewService создает новый экземпляр сервиса. list обычно ConnectionService.GetSystemPorts.
func NewService(list func() ([]string, error), cfg Config, log ports.Logger) *Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if log == nil {
		log = ports.NopLogger{}
	}
	return &Service{
		list:   list,
		config: cfg,
		log:    log,
	}
}

// Start запускает наблюдение. Повторный вызов перезапускает цикл.
func (s *Service) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	go s.monitorRoutine(s.ctx)
	s.log.Debug("Наблюдение за портами запущено")
}

// Stop останавливает наблюдение
func (s *Service) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.log.Debug("Наблюдение за портами остановлено")
	}
}

// Pause приостанавливает опрос
func (s *Service) Pause() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.isPaused = true
}

// Resume возобновляет опрос
func (s *Service) Resume() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.isPaused = false
}

// SetUpdateCallback устанавливает callback смены списка портов.
// Вызывается из горутины опроса.
func (s *Service) SetUpdateCallback(fn func([]string)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.updateCallback = fn
}

// CurrentPorts возвращает последний известный список портов
func (s *Service) CurrentPorts() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return slices.Clone(s.known)
}

func (s *Service) monitorRoutine(ctx context.Context) {
	if s.config.InitialDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.config.InitialDelay):
		}
	}

	s.Poll()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			s.mutex.Lock()
			paused := s.isPaused
			s.mutex.Unlock()
			if paused {
				continue
			}
			s.Poll()
		}
	}
}

// Poll опрашивает список портов один раз и вызывает callback, если он изменился.
// Ошибки перечисления не меняют известный список.
func (s *Service) Poll() {
	list, err := s.list()
	if err != nil {
		s.log.Debug("Не удалось получить список портов: %v", err)
		return
	}
	list = slices.Clone(list)
	sort.Strings(list)

	s.mutex.Lock()
	changed := !slices.Equal(list, s.known)
	s.known = list
	cb := s.updateCallback
	s.mutex.Unlock()

	if changed {
		s.log.Info("Список портов изменился: %v", list)
		if cb != nil {
			cb(slices.Clone(list))
		}
	}
}
