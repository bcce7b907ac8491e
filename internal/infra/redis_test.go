package infra

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	opt := client.Options()
	assert.Equal(t, 2*time.Second, opt.DialTimeout)
	assert.Equal(t, time.Second, opt.ReadTimeout)
}

func TestNewRedisClientKeepsURLTimeouts(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0?dial_timeout=7s")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	assert.Equal(t, 7*time.Second, client.Options().DialTimeout)
}

func TestNewRedisClientErrors(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "")
	assert.Error(t, err)

	_, err = NewRedisClient(context.Background(), "http://not-redis")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(context.Background(), "redis://"+addr)
	assert.Error(t, err)
}
