// Package logger builds the zerolog logger shared by the server, the
// middleware chain and the handlers.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "survey-backend"

// New returns a JSON logger on stdout in production and a human readable
// console logger on stderr everywhere else.
func New(environment string) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	level := zerolog.DebugLevel
	if environment == "production" {
		out = os.Stdout
		level = zerolog.InfoLevel
	}
	return NewWithWriter(out, level)
}

// NewWithWriter is New with an explicit sink, used by tests.
func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}
