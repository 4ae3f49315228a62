package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"reactivos/internal/domain/ports"
)

// Options параметры вывода журнала.
type Options struct {
	Level      string    // trace, debug, info, warn, error, disabled
	File       string    // Путь к файлу журнала; пусто - только консоль
	MaxSizeMB  int       // Размер файла до ротации
	MaxBackups int       // Сколько старых файлов хранить
	MaxAgeDays int       // Сколько дней хранить старые файлы
	Output     io.Writer // Замена консоли (JSON-строки), используется в тестах
}

// ZeroLogger реализует интерфейс ports.Logger поверх zerolog.
type ZeroLogger struct {
	z    zerolog.Logger
	file *lumberjack.Logger
}

// ParseLevel разбирает уровень журнала. Пустая строка означает info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel, fmt.Errorf("неизвестный уровень журнала %q", s)
	}
	return lvl, nil
}

// New создает логгер приложения app: консоль на stderr и, если задан файл,
// ротируемый файл через lumberjack.
func New(app string, opts Options) (*ZeroLogger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var console io.Writer = opts.Output
	if console == nil {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	l := &ZeroLogger{}
	out := console
	if opts.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
		out = zerolog.MultiLevelWriter(console, l.file)
	}

	l.z = zerolog.New(out).Level(lvl).With().Timestamp().Str("app", app).Logger()
	return l, nil
}

// Debug выводит отладочную информацию.
func (l *ZeroLogger) Debug(msg string, args ...interface{}) {
	l.z.Debug().Msgf(msg, args...)
}

// Info выводит информационные сообщения.
func (l *ZeroLogger) Info(msg string, args ...interface{}) {
	l.z.Info().Msgf(msg, args...)
}

// Warn выводит предупреждения.
func (l *ZeroLogger) Warn(msg string, args ...interface{}) {
	l.z.Warn().Msgf(msg, args...)
}

// Error выводит ошибки.
func (l *ZeroLogger) Error(msg string, args ...interface{}) {
	l.z.Error().Msgf(msg, args...)
}

// Fatal выводит критические ошибки и завершает программу.
func (l *ZeroLogger) Fatal(msg string, args ...interface{}) {
	l.z.Fatal().Msgf(msg, args...)
}

// Printf форматированный вывод (для совместимости).
func (l *ZeroLogger) Printf(format string, args ...interface{}) {
	l.z.Info().Msgf(format, args...)
}

// With возвращает логгер с дополнительным полем.
func (l *ZeroLogger) With(key string, value interface{}) ports.Logger {
	return &ZeroLogger{z: l.z.With().Interface(key, value).Logger(), file: l.file}
}

// Close закрывает файл журнала, если он открыт.
func (l *ZeroLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// TransportHook возвращает функцию для tagctl.Config.Logger: строки обмена
// с контроллером уходят в журнал на уровне debug.
func TransportHook(l ports.Logger) func(string) {
	return func(msg string) {
		l.Debug("%s", msg)
	}
}
