package utils

import (
	"io"
	"log"
	"os"
)

// LoggerConfig определяет конфигурацию для логгера
type LoggerConfig struct {
	// text или json
	Format string
	// os.Stdout по умолчанию
	Output io.Writer
	// Цветной префикс, только для text
	EnableColors bool
}

// InitLogger инициализирует и возвращает логгер
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[CSS Hub] "

	if cfg.Format == "json" {
		// JSON строки собирает middleware, префикс и флаги только мешают
		return log.New(cfg.Output, "", 0)
	}
	if cfg.EnableColors {
		prefix = "\033[36m" + prefix + "\033[0m"
	}
	return log.New(cfg.Output, prefix, log.LstdFlags|log.Lmsgprefix|log.LUTC)
}
