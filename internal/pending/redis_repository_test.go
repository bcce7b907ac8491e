package pending

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobportal/jobportal/internal/identity"
)

func setupRedis(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRepository(client, time.Hour), mr
}

func sampleRegistration(email string) Registration {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return Registration{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     "Grace Hopper",
		PhoneNumber:  "555-0100",
		PasswordHash: "$2a$hash",
		Role:         identity.RoleRecruiter,
		Skills:       []string{"go", "cobol"},
		OTP:          "123456",
		OTPExpiresAt: now.Add(10 * time.Minute),
		CreatedAt:    now,
	}
}

func TestRedisRepositoryInsertFind(t *testing.T) {
	repo, _ := setupRedis(t)
	ctx := context.Background()
	reg := sampleRegistration("g@x.com")

	require.NoError(t, repo.Insert(ctx, reg))

	byEmail, err := repo.FindByEmail(ctx, "g@x.com")
	require.NoError(t, err)
	assert.Equal(t, reg, byEmail)

	byID, err := repo.FindByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, reg, byID)
}

func TestRedisRepositoryInsertIfAbsent(t *testing.T) {
	repo, _ := setupRedis(t)
	ctx := context.Background()

	first := sampleRegistration("dup@x.com")
	require.NoError(t, repo.Insert(ctx, first))

	second := sampleRegistration("dup@x.com")
	assert.ErrorIs(t, repo.Insert(ctx, second), ErrExists)

	got, err := repo.FindByEmail(ctx, "dup@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = repo.FindByID(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisRepositoryRefreshCode(t *testing.T) {
	repo, mr := setupRedis(t)
	ctx := context.Background()
	reg := sampleRegistration("r@x.com")
	require.NoError(t, repo.Insert(ctx, reg))

	ttlBefore := mr.TTL(emailKeyPrefix + reg.Email)

	newExpiry := reg.OTPExpiresAt.Add(5 * time.Minute)
	updated, err := repo.RefreshCode(ctx, reg.Email, "654321", newExpiry)
	require.NoError(t, err)
	assert.Equal(t, "654321", updated.OTP)
	assert.Equal(t, newExpiry, updated.OTPExpiresAt)
	assert.Equal(t, reg.PasswordHash, updated.PasswordHash)
	assert.Equal(t, reg.CreatedAt, updated.CreatedAt)

	assert.Equal(t, ttlBefore, mr.TTL(emailKeyPrefix+reg.Email))

	_, err = repo.RefreshCode(ctx, "missing@x.com", "111111", newExpiry)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisRepositoryDeleteByID(t *testing.T) {
	repo, _ := setupRedis(t)
	ctx := context.Background()
	reg := sampleRegistration("d@x.com")
	require.NoError(t, repo.Insert(ctx, reg))

	require.NoError(t, repo.DeleteByID(ctx, reg.ID))
	_, err := repo.FindByEmail(ctx, reg.Email)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.DeleteByID(ctx, reg.ID))
	require.NoError(t, repo.DeleteByID(ctx, uuid.NewString()))
}

func TestRedisRepositoryRetentionExpiry(t *testing.T) {
	repo, mr := setupRedis(t)
	ctx := context.Background()
	reg := sampleRegistration("old@x.com")
	require.NoError(t, repo.Insert(ctx, reg))

	mr.FastForward(time.Hour + time.Second)

	_, err := repo.FindByEmail(ctx, reg.Email)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByID(ctx, reg.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Insert(ctx, sampleRegistration("old@x.com")))
}

func TestRedisRepositoryRetention(t *testing.T) {
	repo, _ := setupRedis(t)
	assert.Equal(t, time.Hour, repo.Retention())
}
