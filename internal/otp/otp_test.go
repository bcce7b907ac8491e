package otp

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeShape(t *testing.T) {
	g := NewGenerator(time.Minute)

	for i := 0; i < 2000; i++ {
		code, _ := g.Generate()
		require.Len(t, code, CodeLength)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, minCode)
		assert.LessOrEqual(t, n, maxCode)
	}
}

func TestGenerateExpiryFromClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewGenerator(10 * time.Minute).WithClock(func() time.Time { return now })

	_, expiry := g.Generate()
	assert.Equal(t, now.Add(10*time.Minute), expiry)
}

func TestNewGeneratorDefaultsTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewGenerator(0).TTL())
	assert.Equal(t, DefaultTTL, NewGenerator(-time.Second).TTL())
}
