package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserExists   = errors.New("user exists")
	ErrUserNotFound = errors.New("user not found")
)

// Repository persists verified accounts. Insert must fail with ErrUserExists
// when an account with the same email is already stored.
type Repository interface {
	Insert(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new user. The unique email index makes it insert-if-absent.
func (r *PostgresRepository) Insert(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	cmd, err := r.db.Exec(ctx, `INSERT INTO users (id, email, fullname, phone_number, password_hash, role, verified, profile, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (email) DO NOTHING`,
		userID, user.Email, user.FullName, user.PhoneNumber, user.PasswordHash, string(user.Role), user.Verified, profile, user.CreatedAt.UTC())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserExists
	}
	return nil
}

// FindByEmail fetches a user by normalized email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, fullname, phone_number, password_hash, role, verified, profile, created_at
        FROM users WHERE email = $1`, email)
	var (
		id        uuid.UUID
		role      string
		profile   []byte
		createdAt time.Time
		user      User
	)
	if err := row.Scan(&id, &user.Email, &user.FullName, &user.PhoneNumber, &user.PasswordHash, &role, &user.Verified, &profile, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &user.Profile); err != nil {
			return User{}, fmt.Errorf("decode profile: %w", err)
		}
	}
	user.ID = id.String()
	user.Role = Role(role)
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
