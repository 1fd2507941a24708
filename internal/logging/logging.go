// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// File, when set, receives JSON logs with rotation alongside the console.
	File string
}

// Setup installs the global logger and returns it.
func Setup(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		level = l
	}

	logger := New(os.Stderr, opts.File).Level(level)
	zerolog.SetGlobalLevel(level)
	log.Logger = logger
	return logger, nil
}

// New builds a logger writing human-readable lines to console and, when file
// is set, JSON lines to a rotated file.
func New(console io.Writer, file string) zerolog.Logger {
	var w io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: time.DateTime}
	if file != "" {
		w = zerolog.MultiLevelWriter(w, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
