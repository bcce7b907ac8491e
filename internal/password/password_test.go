package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashers(t *testing.T) {
	hashers := map[string]Hasher{
		"bcrypt": NewBcrypt(bcrypt.MinCost),
		"argon2": NewArgon2(),
	}

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash("s3cret!")
			require.NoError(t, err)
			assert.NotEqual(t, "s3cret!", hash)

			require.NoError(t, h.Compare(hash, "s3cret!"))
			assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrMismatch)
		})
	}
}

func TestNew(t *testing.T) {
	h, err := New("bcrypt")
	require.NoError(t, err)
	assert.IsType(t, &Bcrypt{}, h)

	h, err = New("argon2")
	require.NoError(t, err)
	assert.IsType(t, &Argon2{}, h)

	_, err = New("md5")
	assert.Error(t, err)
}
