package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jobportal/jobportal/internal/identity"
)

const (
	emailKeyPrefix = "registration:pending:email:"
	idKeyPrefix    = "registration:pending:id:"
)

// insertScript writes the hash and its id index only if no record exists for
// the email. Both keys expire together at the end of the retention window.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('PEXPIRE', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[1])
return 1
`)

// refreshScript swaps the code in place. HSET keeps the existing TTL, so the
// retention window stays anchored at creation.
var refreshScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return false
end
redis.call('HSET', KEYS[1], 'otp', ARGV[1], 'otp_expires_at', ARGV[2])
return redis.call('HGETALL', KEYS[1])
`)

// deleteScript removes the record behind an id, leaving a newer record for
// the same email untouched.
var deleteScript = redis.NewScript(`
local email = redis.call('GET', KEYS[1])
if not email then
  return 0
end
local emailKey = ARGV[2] .. email
if redis.call('HGET', emailKey, 'id') == ARGV[1] then
  redis.call('DEL', emailKey)
end
redis.call('DEL', KEYS[1])
return 1
`)

// RedisRepository stores each registration as a hash keyed by email, with a
// secondary id key pointing back at the email. The key TTL is the retention window.
type RedisRepository struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisRepository builds a Redis-backed pending registration store.
func NewRedisRepository(client *redis.Client, retention time.Duration) *RedisRepository {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &RedisRepository{client: client, retention: retention}
}

func (r *RedisRepository) Insert(ctx context.Context, reg Registration) error {
	fields, err := encodeHash(reg)
	if err != nil {
		return err
	}
	args := append([]any{r.retention.Milliseconds(), reg.Email}, fields...)

	created, err := insertScript.Run(ctx, r.client, []string{emailKeyPrefix + reg.Email, idKeyPrefix + reg.ID}, args...).Int()
	if err != nil {
		return fmt.Errorf("insert pending registration: %w", err)
	}
	if created == 0 {
		return ErrExists
	}
	return nil
}

func (r *RedisRepository) FindByEmail(ctx context.Context, email string) (Registration, error) {
	vals, err := r.client.HGetAll(ctx, emailKeyPrefix+email).Result()
	if err != nil {
		return Registration{}, fmt.Errorf("load pending registration: %w", err)
	}
	if len(vals) == 0 {
		return Registration{}, ErrNotFound
	}
	return decodeHash(vals)
}

func (r *RedisRepository) FindByID(ctx context.Context, id string) (Registration, error) {
	email, err := r.client.Get(ctx, idKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Registration{}, ErrNotFound
		}
		return Registration{}, fmt.Errorf("resolve pending registration id: %w", err)
	}
	reg, err := r.FindByEmail(ctx, email)
	if err != nil {
		return Registration{}, err
	}
	if reg.ID != id {
		return Registration{}, ErrNotFound
	}
	return reg, nil
}

func (r *RedisRepository) RefreshCode(ctx context.Context, email, code string, expiresAt time.Time) (Registration, error) {
	res, err := refreshScript.Run(ctx, r.client, []string{emailKeyPrefix + email}, code, expiresAt.UnixMilli()).StringSlice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Registration{}, ErrNotFound
		}
		return Registration{}, fmt.Errorf("refresh pending registration: %w", err)
	}
	if len(res)%2 != 0 {
		return Registration{}, fmt.Errorf("refresh pending registration: odd hash reply length %d", len(res))
	}
	vals := make(map[string]string, len(res)/2)
	for i := 0; i < len(res); i += 2 {
		vals[res[i]] = res[i+1]
	}
	return decodeHash(vals)
}

func (r *RedisRepository) DeleteByID(ctx context.Context, id string) error {
	if err := deleteScript.Run(ctx, r.client, []string{idKeyPrefix + id}, id, emailKeyPrefix).Err(); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return nil
}

func encodeHash(reg Registration) ([]any, error) {
	skills, err := json.Marshal(reg.Skills)
	if err != nil {
		return nil, fmt.Errorf("encode skills: %w", err)
	}
	return []any{
		"id", reg.ID,
		"email", reg.Email,
		"fullname", reg.FullName,
		"phone_number", reg.PhoneNumber,
		"password_hash", reg.PasswordHash,
		"role", string(reg.Role),
		"profile_photo", reg.ProfilePhoto,
		"skills", string(skills),
		"otp", reg.OTP,
		"otp_expires_at", reg.OTPExpiresAt.UnixMilli(),
		"created_at", reg.CreatedAt.UnixMilli(),
	}, nil
}

func decodeHash(vals map[string]string) (Registration, error) {
	reg := Registration{
		ID:           vals["id"],
		Email:        vals["email"],
		FullName:     vals["fullname"],
		PhoneNumber:  vals["phone_number"],
		PasswordHash: vals["password_hash"],
		Role:         identity.Role(vals["role"]),
		ProfilePhoto: vals["profile_photo"],
		OTP:          vals["otp"],
	}

	var err error
	if reg.OTPExpiresAt, err = parseMillis(vals["otp_expires_at"]); err != nil {
		return Registration{}, fmt.Errorf("decode otp_expires_at: %w", err)
	}
	if reg.CreatedAt, err = parseMillis(vals["created_at"]); err != nil {
		return Registration{}, fmt.Errorf("decode created_at: %w", err)
	}
	if s := vals["skills"]; s != "" && s != "null" {
		if err := json.Unmarshal([]byte(s), &reg.Skills); err != nil {
			return Registration{}, fmt.Errorf("decode skills: %w", err)
		}
	}
	return reg, nil
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func (r *RedisRepository) Retention() time.Duration {
	return r.retention
}
