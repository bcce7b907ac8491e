package identity

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email string) User {
	return User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     "Ada Lovelace",
		PhoneNumber:  "555",
		PasswordHash: "hash",
		Role:         RoleStudent,
		Verified:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestMemoryRepositoryInsertAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	user := newUser("a@x.com")
	require.NoError(t, repo.Insert(ctx, user))

	got, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.Verified)

	assert.ErrorIs(t, repo.Insert(ctx, newUser("a@x.com")), ErrUserExists)
}

func TestMemoryRepositoryConcurrentInsertKeepsOne(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		success atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Insert(ctx, newUser("race@x.com")); err == nil {
				success.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, success.Load())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com "))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleRecruiter.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}
