// Package pending stores registrations that are waiting for email confirmation.
package pending

import (
	"time"

	"github.com/jobportal/jobportal/internal/identity"
)

// Registration is a not-yet-verified signup. At most one exists per email.
type Registration struct {
	ID           string        `bson:"_id"`
	Email        string        `bson:"email"`
	FullName     string        `bson:"fullname"`
	PhoneNumber  string        `bson:"phone_number"`
	PasswordHash string        `bson:"password_hash"`
	Role         identity.Role `bson:"role"`
	ProfilePhoto string        `bson:"profile_photo"`
	Skills       []string      `bson:"skills"`
	OTP          string        `bson:"otp"`
	OTPExpiresAt time.Time     `bson:"otp_expires_at"`
	CreatedAt    time.Time     `bson:"created_at"`
}

// Expired reports whether the registration's code is no longer valid at now.
func (r Registration) Expired(now time.Time) bool {
	return now.After(r.OTPExpiresAt)
}
