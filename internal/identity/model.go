package identity

import (
	"strings"
	"time"
)

// Role is the kind of account a user holds.
type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleRecruiter
}

// Profile holds the optional applicant profile attached to an account.
type Profile struct {
	ProfilePhoto       string   `json:"profilePhoto"       bson:"profile_photo"`
	Bio                string   `json:"bio"                bson:"bio"`
	Skills             []string `json:"skills"             bson:"skills"`
	Resume             string   `json:"resume"             bson:"resume"`
	ResumeOriginalName string   `json:"resumeOriginalName" bson:"resume_original_name"`
}

// User is a verified account. Records only exist once the email has been confirmed.
type User struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	FullName     string    `bson:"fullname"`
	PhoneNumber  string    `bson:"phone_number"`
	PasswordHash string    `bson:"password_hash"`
	Role         Role      `bson:"role"`
	Verified     bool      `bson:"verified"`
	Profile      Profile   `bson:"profile"`
	CreatedAt    time.Time `bson:"created_at"`
}

// NormalizeEmail trims and lowercases an address so that lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
