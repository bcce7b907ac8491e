package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewParsesLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tc := range cases {
		logger := New(tc.in, "json")
		assert.Equal(t, tc.want, logger.GetLevel(), "level %q", tc.in)
	}
}

func TestDiscardIsDisabled(t *testing.T) {
	logger := Discard()
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}
