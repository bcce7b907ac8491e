// Package password hashes and checks account secrets. Registration only
// hashes; Compare and ErrMismatch serve the login side, which reads the
// credentials this service writes.
package password

import (
	"errors"
	"fmt"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by Compare when the plaintext does not match the hash.
var ErrMismatch = errors.New("password mismatch")

// Hasher turns plaintext secrets into one-way salted hashes.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(hash, plaintext string) error
}

// New returns the hasher registered under name ("bcrypt" or "argon2").
func New(name string) (Hasher, error) {
	switch name {
	case "", "bcrypt":
		return NewBcrypt(bcrypt.DefaultCost), nil
	case "argon2":
		return NewArgon2(), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// Bcrypt hashes with golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt builds a bcrypt hasher with the given cost.
func NewBcrypt(cost int) *Bcrypt {
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (b *Bcrypt) Compare(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

// Argon2 hashes with argon2id in the PHC encoded format.
type Argon2 struct {
	cfg argon2.Config
}

// NewArgon2 builds an argon2id hasher with the library defaults.
func NewArgon2() *Argon2 {
	return &Argon2{cfg: argon2.DefaultConfig()}
}

func (a *Argon2) Hash(plaintext string) (string, error) {
	encoded, err := a.cfg.HashEncoded([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func (a *Argon2) Compare(hash, plaintext string) error {
	ok, err := argon2.VerifyEncoded([]byte(plaintext), []byte(hash))
	if err != nil {
		return err
	}
	if !ok {
		return ErrMismatch
	}
	return nil
}
