// Package logger builds the structured application logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging settings.
type Config struct {
	Level      string `json:"level,omitempty" env:"LEVEL" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	Format     string `json:"format,omitempty" env:"FORMAT" validate:"omitempty,oneof=text json"`
	File       string `json:"file,omitempty" env:"FILE"` // Rotated log file; empty logs to stderr
	MaxSizeMB  int    `json:"max_size_mb,omitempty" env:"MAX_SIZE_MB" validate:"gte=0"`
	MaxBackups int    `json:"max_backups,omitempty" env:"MAX_BACKUPS" validate:"gte=0"`
	MaxAgeDays int    `json:"max_age_days,omitempty" env:"MAX_AGE_DAYS" validate:"gte=0"`
}

// DefaultConfig logs warnings and above as text to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "warn",
		Format:     "text",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// New creates a logger from cfg. stderr receives output when no file is set.
func New(cfg Config, stderr io.Writer) (*logrus.Logger, error) {
	log := logrus.New()

	level := logrus.WarnLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	if cfg.File == "" {
		log.SetOutput(stderr)
		return log, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	})
	return log, nil
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
