// Package logging builds the structured logger every BeaconWatch component
// takes as a constructor argument.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/jihwankim/beaconwatch/pkg/config"
)

// New builds a zerolog.Logger from a LoggingConfig. Components receive the
// logger as a value; nothing here touches global state.
func New(cfg config.LoggingConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit output sink, used by tests that want
// to assert on log lines.
func NewWithWriter(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	var output io.Writer = w
	if cfg.Format == "text" {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	switch cfg.Level {
	case "debug":
		logger = logger.Level(zerolog.DebugLevel)
	case "warn":
		logger = logger.Level(zerolog.WarnLevel)
	case "error":
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		logger = logger.Level(zerolog.InfoLevel)
	}

	return logger
}
