package registration

import "errors"

// Caller-recoverable outcomes of the registration workflow. Storage faults are
// returned wrapped and never match any of these.
var (
	ErrValidation            = errors.New("validation failed")
	ErrAlreadyRegistered     = errors.New("email already registered")
	ErrNoPendingRegistration = errors.New("no pending registration")
	ErrOTPExpired            = errors.New("otp expired")
	ErrInvalidOTP            = errors.New("invalid otp")
	ErrNotificationFailed    = errors.New("notification failed")
)
