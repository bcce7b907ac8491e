package pending

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps registrations in process memory. Used by tests and
// the memory backend in local development.
type MemoryRepository struct {
	mu        sync.Mutex
	byEmail   map[string]Registration
	retention time.Duration
	now       func() time.Time
}

// NewMemoryRepository builds an in-memory store. A nil clock uses time.Now.
func NewMemoryRepository(retention time.Duration, now func() time.Time) *MemoryRepository {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryRepository{
		byEmail:   make(map[string]Registration),
		retention: retention,
		now:       now,
	}
}

// live returns the record for email, dropping it if the retention window passed.
// Callers hold r.mu.
func (r *MemoryRepository) live(email string) (Registration, bool) {
	reg, ok := r.byEmail[email]
	if !ok {
		return Registration{}, false
	}
	if !r.now().Before(reg.CreatedAt.Add(r.retention)) {
		delete(r.byEmail, email)
		return Registration{}, false
	}
	return reg, true
}

func (r *MemoryRepository) Insert(_ context.Context, reg Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live(reg.Email); ok {
		return ErrExists
	}
	reg.Skills = append([]string(nil), reg.Skills...)
	r.byEmail[reg.Email] = reg
	return nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.live(email)
	if !ok {
		return Registration{}, ErrNotFound
	}
	return reg, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, reg := range r.byEmail {
		if reg.ID != id {
			continue
		}
		if live, ok := r.live(email); ok {
			return live, nil
		}
		break
	}
	return Registration{}, ErrNotFound
}

func (r *MemoryRepository) RefreshCode(_ context.Context, email, code string, expiresAt time.Time) (Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.live(email)
	if !ok {
		return Registration{}, ErrNotFound
	}
	reg.OTP = code
	reg.OTPExpiresAt = expiresAt
	r.byEmail[email] = reg
	return reg, nil
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, reg := range r.byEmail {
		if reg.ID == id {
			delete(r.byEmail, email)
			return nil
		}
	}
	return nil
}

// Len returns the number of stored records, live or not.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byEmail)
}

func (r *MemoryRepository) Retention() time.Duration {
	return r.retention
}
