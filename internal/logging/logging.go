package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"quiz-arena/internal/config"
)

var writer io.Writer = os.Stdout

// Init configures the global zerolog logger from config. Called once at
// process start, before any goroutine logs.
func Init(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	writer = os.Stdout
	if cfg.File != "" {
		if fw, err := newCapWriter(cfg.File, cfg.MaxMB); err == nil {
			writer = fw
		}
	}
	output := writer
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: writer}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer exposes the active sink for adjacent loggers (httplog).
func Writer() io.Writer { return writer }
