package pending

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryLifecycle(t *testing.T) {
	now := time.Now().UTC()
	repo := NewMemoryRepository(time.Hour, func() time.Time { return now })
	ctx := context.Background()

	reg := sampleRegistration("m@x.com")
	reg.CreatedAt = now
	require.NoError(t, repo.Insert(ctx, reg))
	assert.ErrorIs(t, repo.Insert(ctx, reg), ErrExists)

	got, err := repo.FindByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.Email, got.Email)

	updated, err := repo.RefreshCode(ctx, reg.Email, "999999", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "999999", updated.OTP)

	require.NoError(t, repo.DeleteByID(ctx, reg.ID))
	_, err = repo.FindByEmail(ctx, reg.Email)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryRetention(t *testing.T) {
	now := time.Now().UTC()
	repo := NewMemoryRepository(time.Hour, func() time.Time { return now })
	ctx := context.Background()

	reg := sampleRegistration("ttl@x.com")
	reg.CreatedAt = now
	require.NoError(t, repo.Insert(ctx, reg))

	now = now.Add(time.Hour)

	_, err := repo.FindByEmail(ctx, reg.Email)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.RefreshCode(ctx, reg.Email, "111111", now)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, repo.Len())
}

func TestMemoryRepositoryConcurrentInsert(t *testing.T) {
	repo := NewMemoryRepository(time.Hour, nil)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Insert(ctx, sampleRegistration("same@x.com")); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, repo.Len())
}

func TestMemoryRepositoryRetentionDefault(t *testing.T) {
	assert.Equal(t, DefaultRetention, NewMemoryRepository(0, nil).Retention())
	assert.Equal(t, 30*time.Minute, NewMemoryRepository(30*time.Minute, nil).Retention())
}
