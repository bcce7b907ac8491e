package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger configured at the provided level. If the
// level string is invalid it defaults to info. Format "console" produces
// human readable output; anything else is JSON.
func New(level, format string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return &logger
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
