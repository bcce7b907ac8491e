// Package otp issues the numeric one-time codes mailed during signup.
package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

const (
	// DefaultTTL is the verification window of a single code.
	DefaultTTL = 10 * time.Minute

	minCode = 100000
	maxCode = 999999
)

// CodeLength is the fixed number of digits in every generated code.
const CodeLength = 6

var codeSpan = big.NewInt(maxCode - minCode + 1)

// Generator produces codes together with their expiry.
type Generator struct {
	ttl time.Duration
	now func() time.Time
}

// NewGenerator builds a Generator whose codes expire ttl after issue.
// A non-positive ttl falls back to DefaultTTL.
func NewGenerator(ttl time.Duration) *Generator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Generator{ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// TTL returns the verification window.
func (g *Generator) TTL() time.Duration {
	return g.ttl
}

// Generate returns a six digit code in [100000, 999999] and the instant it expires.
func (g *Generator) Generate() (string, time.Time) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic("otp: read random: " + err.Error())
	}
	code := strconv.FormatInt(n.Int64()+minCode, 10)
	return code, g.now().UTC().Add(g.ttl)
}
