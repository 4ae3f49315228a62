// Package config загружает настройки клиента контроллера меток:
// значения по умолчанию, затем файл YAML или TOML, затем переменные окружения.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"reactivos/internal/infrastructure/logger"
	"reactivos/pkg/tagctl"
)

// Config полная конфигурация приложения
type Config struct {
	Serial   SerialConfig   `yaml:"serial" toml:"serial"`
	Commands CommandsConfig `yaml:"commands" toml:"commands"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Storage  StorageConfig  `yaml:"storage" toml:"storage"`
}

// SerialConfig параметры последовательного порта
type SerialConfig struct {
	Port           string `yaml:"port" toml:"port"`
	BaudRate       int    `yaml:"baudRate" toml:"baudRate"`
	ReadTimeoutMs  int    `yaml:"readTimeoutMs" toml:"readTimeoutMs"`
	PollIntervalMs int    `yaml:"pollIntervalMs" toml:"pollIntervalMs"`
	Charset        string `yaml:"charset" toml:"charset"`
	PortScanMs     int    `yaml:"portScanMs" toml:"portScanMs"` // 0 - не следить за списком портов
}

// CommandsConfig тайминги команд
type CommandsConfig struct {
	Write CommandConfig `yaml:"write" toml:"write"`
	Read  CommandConfig `yaml:"read" toml:"read"`
	Track CommandConfig `yaml:"track" toml:"track"`
	Out   CommandConfig `yaml:"out" toml:"out"`
}

// CommandConfig пауза перед записью и дедлайн сессии одной команды
type CommandConfig struct {
	PreWriteDelayMs int `yaml:"preWriteDelayMs" toml:"preWriteDelayMs"`
	TimeoutSec      int `yaml:"timeoutSec" toml:"timeoutSec"`
}

// LoggingConfig параметры журнала
type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb" toml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups" toml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays" toml:"maxAgeDays"`
}

// StorageConfig пути к файлам данных
type StorageConfig struct {
	ProfilesPath string `yaml:"profilesPath" toml:"profilesPath"`
}

// Load загружает конфигурацию. Пустой path означает только значения
// по умолчанию и переменные окружения.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	ms := func(d time.Duration) int { return int(d / time.Millisecond) }
	sec := func(d time.Duration) int { return int(d / time.Second) }

	return &Config{
		Serial: SerialConfig{
			BaudRate:       tagctl.DefaultBaudRate,
			ReadTimeoutMs:  ms(tagctl.DefaultReadTimeout),
			PollIntervalMs: ms(tagctl.DefaultPollInterval),
			Charset:        "utf-8",
			PortScanMs:     3000,
		},
		Commands: CommandsConfig{
			Write: CommandConfig{PreWriteDelayMs: ms(tagctl.DefaultPreWriteDelay), TimeoutSec: sec(tagctl.DefaultSessionTimeout)},
			Read:  CommandConfig{PreWriteDelayMs: ms(tagctl.DefaultPreWriteDelay), TimeoutSec: sec(tagctl.DefaultSessionTimeout)},
			Track: CommandConfig{PreWriteDelayMs: ms(tagctl.DefaultTrackPreWriteDelay), TimeoutSec: sec(tagctl.DefaultTrackTimeout)},
			Out:   CommandConfig{PreWriteDelayMs: ms(tagctl.DefaultPreWriteDelay), TimeoutSec: sec(tagctl.DefaultSessionTimeout)},
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
		Storage: StorageConfig{
			ProfilesPath: "profiles.json",
		},
	}
}

// loadFromFile накладывает файл на уже заполненную конфигурацию.
// Формат определяется расширением.
func loadFromFile(cfg *Config, filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err := toml.DecodeFile(filename, cfg)
		return err
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(filename))
	}
}

func applyEnvOverrides(cfg *Config) error {
	if port := os.Getenv("REACTIVOS_PORT"); port != "" {
		cfg.Serial.Port = strings.TrimSpace(port)
	}
	if baud := os.Getenv("REACTIVOS_BAUD"); baud != "" {
		v, err := strconv.Atoi(strings.TrimSpace(baud))
		if err != nil {
			return fmt.Errorf("parse REACTIVOS_BAUD: %w", err)
		}
		cfg.Serial.BaudRate = v
	}
	if cs := os.Getenv("REACTIVOS_CHARSET"); cs != "" {
		cfg.Serial.Charset = strings.TrimSpace(cs)
	}
	if lvl := os.Getenv("REACTIVOS_LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = strings.TrimSpace(lvl)
	}
	return nil
}

// Validate проверяет границы значений
func (c *Config) Validate() error {
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Serial.BaudRate)
	}
	if c.Serial.ReadTimeoutMs <= 0 || c.Serial.ReadTimeoutMs > 10000 {
		return fmt.Errorf("read timeout %d ms is outside range [1, 10000]", c.Serial.ReadTimeoutMs)
	}
	if c.Serial.PollIntervalMs <= 0 || c.Serial.PollIntervalMs > 10000 {
		return fmt.Errorf("poll interval %d ms is outside range [1, 10000]", c.Serial.PollIntervalMs)
	}
	if c.Serial.PortScanMs != 0 && (c.Serial.PortScanMs < 100 || c.Serial.PortScanMs > 60000) {
		return fmt.Errorf("port scan interval %d ms is outside range [100, 60000]", c.Serial.PortScanMs)
	}

	for name, cc := range c.Commands.byKind() {
		if cc.PreWriteDelayMs < 0 || cc.PreWriteDelayMs > 10000 {
			return fmt.Errorf("%s pre-write delay %d ms is outside range [0, 10000]", name, cc.PreWriteDelayMs)
		}
		if cc.TimeoutSec < 1 || cc.TimeoutSec > 120 {
			return fmt.Errorf("%s timeout %d seconds is outside range [1, 120]", name, cc.TimeoutSec)
		}
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Storage.ProfilesPath == "" {
		return fmt.Errorf("storage.profilesPath must not be empty")
	}
	return nil
}

func (c CommandsConfig) byKind() map[tagctl.CommandKind]CommandConfig {
	return map[tagctl.CommandKind]CommandConfig{
		tagctl.CommandWrite: c.Write,
		tagctl.CommandRead:  c.Read,
		tagctl.CommandTrack: c.Track,
		tagctl.CommandOut:   c.Out,
	}
}

// Specs возвращает таблицу команд с настроенными таймингами.
func (c *Config) Specs() tagctl.Specs {
	specs := tagctl.DefaultSpecs()
	for kind, cc := range c.Commands.byKind() {
		specs[kind] = specs[kind].WithTiming(
			time.Duration(cc.PreWriteDelayMs)*time.Millisecond,
			time.Duration(cc.TimeoutSec)*time.Second,
		)
	}
	return specs
}

// ClientConfig собирает tagctl.Config из настроек порта и таблицы команд.
func (c *Config) ClientConfig() tagctl.Config {
	return tagctl.Config{
		ReadTimeout:  time.Duration(c.Serial.ReadTimeoutMs) * time.Millisecond,
		PollInterval: time.Duration(c.Serial.PollIntervalMs) * time.Millisecond,
		Charset:      c.Serial.Charset,
		Specs:        c.Specs(),
	}
}

// LoggerOptions параметры для logger.New.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Logging.Level,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
	}
}
