package connection

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.bug.st/serial"

	"reactivos/internal/domain/models"
	"reactivos/internal/domain/ports"
)

// ConnectionService отвечает за подключение к контроллеру меток и управление профилями
type ConnectionService struct {
	ctl  ports.TagController
	repo ports.ProfileRepository
	log  ports.Logger

	// listPorts перечисляет порты системы; подменяется в тестах
	listPorts func() ([]string, error)
}

// NewConnectionService создает новый экземпляр ConnectionService
func NewConnectionService(ctl ports.TagController, repo ports.ProfileRepository, log ports.Logger) *ConnectionService {
	if log == nil {
		log = ports.NopLogger{}
	}
	return &ConnectionService{
		ctl:       ctl,
		repo:      repo,
		log:       log,
		listPorts: serial.GetPortsList,
	}
}

// GetSystemPorts возвращает список доступных в системе COM-портов
func (s *ConnectionService) GetSystemPorts() ([]string, error) {
	portsList, err := s.listPorts()
	if err != nil {
		return nil, err
	}
	sort.Strings(portsList)
	return portsList, nil
}

// Connect устанавливает соединение и запоминает профиль порта.
// Ошибка сохранения профиля не разрывает соединение.
func (s *ConnectionService) Connect(portName string, baudRate int) error {
	if portName == "" {
		return errors.New("не выбран порт")
	}
	if err := s.ctl.Connect(portName, baudRate); err != nil {
		s.log.Error("Ошибка подключения к %s: %v", portName, err)
		return err
	}
	s.log.Info("Подключено к %s (%d бод)", portName, baudRate)

	if s.repo != nil {
		profile := &models.ConnectionProfile{PortName: portName, BaudRate: baudRate}
		if err := s.SaveProfile(profile); err != nil {
			s.log.Warn("Не удалось сохранить профиль %s: %v", portName, err)
		}
	}
	return nil
}

// Disconnect разрывает соединение с контроллером
func (s *ConnectionService) Disconnect() error {
	if err := s.ctl.Disconnect(); err != nil {
		s.log.Error("Ошибка отключения: %v", err)
		return err
	}
	s.log.Info("Соединение закрыто")
	return nil
}

// IsConnected проверяет, активно ли соединение
func (s *ConnectionService) IsConnected() bool {
	return s.ctl.IsConnected()
}

// LoadProfiles загружает все профили подключения
func (s *ConnectionService) LoadProfiles() ([]*models.ConnectionProfile, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.LoadProfiles()
}

// LastProfile возвращает последний использованный профиль или nil
func (s *ConnectionService) LastProfile() (*models.ConnectionProfile, error) {
	profiles, err := s.LoadProfiles()
	if err != nil || len(profiles) == 0 {
		return nil, err
	}
	return profiles[0], nil
}

// SaveProfile сохраняет или обновляет профиль подключения
func (s *ConnectionService) SaveProfile(profile *models.ConnectionProfile) error {
	if s.repo == nil {
		return nil
	}
	profile.LastUsed = time.Now()
	if err := s.repo.UpsertProfile(profile); err != nil {
		return fmt.Errorf("сохранение профиля: %w", err)
	}
	return nil
}

// DeleteProfile удаляет профиль по имени порта
func (s *ConnectionService) DeleteProfile(portName string) error {
	return s.repo.DeleteProfile(portName)
}

// ClearProfiles удаляет все профили
func (s *ConnectionService) ClearProfiles() error {
	return s.repo.ClearProfiles()
}
