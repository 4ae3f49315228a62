package models

import "time"

// ConnectionProfile представляет сохранённые параметры подключения к контроллеру меток
type ConnectionProfile struct {
	PortName string    `json:"portName"` // Например "COM8" или "/dev/ttyUSB0" (уникальный ключ)
	BaudRate int       `json:"baudRate"` // Например 115200
	Charset  string    `json:"charset,omitempty"`
	LastUsed time.Time `json:"lastUsed"` // Время последнего успешного подключения
}
