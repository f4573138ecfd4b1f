package logging

import (
	"log"
	"log/slog"
	"os"

	"gorm.io/gorm/logger"
)

// SetupLogger installs a text slog handler as the process default and routes
// the standard log package through it.
func SetupLogger(level slog.Level, serviceName string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	l := slog.New(handler).With("service", serviceName)

	slog.SetDefault(l)
	log.SetFlags(0)

	return l
}

// GormLogger matches the gorm log level to the slog level.
func GormLogger(level slog.Level) logger.Interface {
	switch {
	case level <= slog.LevelDebug:
		return logger.Default.LogMode(logger.Info)
	case level >= slog.LevelError:
		return logger.Default.LogMode(logger.Error)
	default:
		return logger.Default.LogMode(logger.Warn)
	}
}
