package ports

import "reactivos/internal/domain/models"

// ProfileRepository определяет интерфейс для хранения профилей подключения.
// Реализация интерфейса находится в слое Infrastructure.
type ProfileRepository interface {
	// LoadProfiles загружает все профили, последние использованные первыми
	LoadProfiles() ([]*models.ConnectionProfile, error)

	// UpsertProfile добавляет или обновляет профиль
	UpsertProfile(profile *models.ConnectionProfile) error

	// DeleteProfile удаляет профиль по имени порта
	DeleteProfile(portName string) error

	// FindProfile находит профиль по имени порта, nil если его нет
	FindProfile(portName string) (*models.ConnectionProfile, error)

	// ClearProfiles очищает все профили
	ClearProfiles() error

	// UpdateLastUsed обновляет время последнего использования профиля
	UpdateLastUsed(portName string) error
}
