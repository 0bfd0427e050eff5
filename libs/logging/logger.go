// Package logging builds the zerolog logger shared by the apps.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New constructs a zerolog.Logger. Debug enables debug level and human readable
// console output; otherwise JSON lines are written at info level.
func New(debug bool) zerolog.Logger {
	return newLogger(os.Stdout, debug)
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// SetGlobal makes l the logger used by the zerolog/log package.
func SetGlobal(l zerolog.Logger) {
	log.Logger = l
}
