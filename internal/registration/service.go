// Package registration runs the deferred signup workflow: a submission is
// held as a pending registration until the emailed code is confirmed, and only
// then does an account exist.
package registration

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jobportal/jobportal/internal/identity"
	"github.com/jobportal/jobportal/internal/notification"
	"github.com/jobportal/jobportal/internal/otp"
	"github.com/jobportal/jobportal/internal/password"
	"github.com/jobportal/jobportal/internal/pending"
)

// Status is the registration state of an email address.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusPending    Status = "pending"
	StatusAvailable  Status = "available"
)

// Pending is returned whenever a code has been issued for a registration.
type Pending struct {
	RegistrationID string
	Email          string
	ExpiresAt      time.Time
}

// StatusResult reports where an email stands. RegistrationID and ExpiresAt
// are set only for StatusPending.
type StatusResult struct {
	Status         Status
	RegistrationID string
	ExpiresAt      time.Time
}

// Service coordinates the credential store, the pending store, the code
// generator, the password hasher and the notifier.
type Service struct {
	users    identity.Repository
	pending  pending.Repository
	codes    *otp.Generator
	hasher   password.Hasher
	notifier notification.Notifier
	logger   *zerolog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds the registration workflow. A nil logger discards output.
func NewService(
	users identity.Repository,
	pendingRepo pending.Repository,
	codes *otp.Generator,
	hasher password.Hasher,
	notifier notification.Notifier,
	logger *zerolog.Logger,
) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		users:    users,
		pending:  pendingRepo,
		codes:    codes,
		hasher:   hasher,
		notifier: notifier,
		logger:   logger,
		validate: newValidator(),
		now:      time.Now,
	}
}

// WithClock replaces the time source used for expiry checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit records a signup and mails a code to the address. A live pending
// registration for the same email is reused: its code is replaced and its id
// returned, and the originally submitted details are kept.
//
// When the email cannot be sent the registration stays stored, and the
// returned Pending is valid alongside an error matching ErrNotificationFailed.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Pending, error) {
	in = in.normalized()
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return Pending{}, validationError(err)
	}

	if err := s.ensureNotRegistered(ctx, in.Email); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			// The account wins over any leftover pending record.
			if leftover, findErr := s.pending.FindByEmail(ctx, in.Email); findErr == nil {
				s.discard(ctx, leftover)
			}
		}
		return Pending{}, err
	}

	existing, err := s.pending.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if !existing.Expired(s.now()) {
			return s.reissue(ctx, existing)
		}
		if err := s.pending.DeleteByID(ctx, existing.ID); err != nil {
			return Pending{}, fmt.Errorf("discard expired registration: %w", err)
		}
	case !errors.Is(err, pending.ErrNotFound):
		return Pending{}, fmt.Errorf("lookup pending registration: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Pending{}, fmt.Errorf("hash password: %w", err)
	}
	code, expiresAt := s.codes.Generate()

	reg := pending.Registration{
		ID:           uuid.NewString(),
		Email:        in.Email,
		FullName:     in.FullName,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
		Role:         in.Role,
		ProfilePhoto: in.ProfilePhoto,
		Skills:       in.Skills,
		OTP:          code,
		OTPExpiresAt: expiresAt,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.pending.Insert(ctx, reg); err != nil {
		if errors.Is(err, pending.ErrExists) {
			// A concurrent submission won; share its registration.
			winner, findErr := s.findPending(ctx, in.Email)
			if findErr != nil {
				return Pending{}, findErr
			}
			return s.reissue(ctx, winner)
		}
		return Pending{}, fmt.Errorf("store pending registration: %w", err)
	}

	s.logger.Debug().Str("registration_id", reg.ID).Msg("registration submitted")
	return s.dispatch(ctx, reg)
}

// Resend issues a fresh code for the pending registration of email. The
// previous code stops working immediately.
func (s *Service) Resend(ctx context.Context, email string) (Pending, error) {
	email, err := s.checkEmail(ctx, email)
	if err != nil {
		return Pending{}, err
	}

	reg, err := s.findPending(ctx, email)
	if err != nil {
		return Pending{}, err
	}
	if err := s.ensureNotRegistered(ctx, email); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			s.discard(ctx, reg)
		}
		return Pending{}, err
	}

	return s.reissue(ctx, reg)
}

// Verify confirms the code for email and turns the pending registration into
// an account. Concurrent calls with the correct code create exactly one account.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	email, err := s.checkEmail(ctx, email)
	if err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("%w: invalid otp", ErrValidation)
	}

	reg, err := s.findPending(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNoPendingRegistration) {
			// A concurrent Verify may have just promoted this email.
			if regErr := s.ensureNotRegistered(ctx, email); regErr != nil {
				return regErr
			}
		}
		return err
	}
	if reg.Expired(s.now()) {
		s.discard(ctx, reg)
		return ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(reg.OTP), []byte(code)) != 1 {
		return ErrInvalidOTP
	}

	user := identity.User{
		ID:           uuid.NewString(),
		Email:        reg.Email,
		FullName:     reg.FullName,
		PhoneNumber:  reg.PhoneNumber,
		PasswordHash: reg.PasswordHash,
		Role:         reg.Role,
		Verified:     true,
		Profile: identity.Profile{
			ProfilePhoto: reg.ProfilePhoto,
			Skills:       reg.Skills,
		},
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, identity.ErrUserExists) {
			s.discard(ctx, reg)
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("create account: %w", err)
	}

	// The account is authoritative from here on. A leftover pending record is
	// discarded the next time anything touches this email.
	if err := s.pending.DeleteByID(ctx, reg.ID); err != nil {
		s.logger.Warn().Err(err).Str("registration_id", reg.ID).Msg("pending registration not removed after verification")
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("registration verified")
	return nil
}

// Cancel abandons the pending registration with id.
func (s *Service) Cancel(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid registration id", ErrValidation)
	}

	reg, err := s.pending.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pending.ErrNotFound) {
			return ErrNoPendingRegistration
		}
		return fmt.Errorf("lookup pending registration: %w", err)
	}
	if err := s.pending.DeleteByID(ctx, reg.ID); err != nil {
		return fmt.Errorf("cancel registration: %w", err)
	}

	s.logger.Debug().Str("registration_id", reg.ID).Msg("registration cancelled")
	return nil
}

// CheckStatus reports whether email is registered, awaiting verification or
// free to use. An expired pending registration is discarded and reported as
// available.
func (s *Service) CheckStatus(ctx context.Context, email string) (StatusResult, error) {
	email, err := s.checkEmail(ctx, email)
	if err != nil {
		return StatusResult{}, err
	}

	if err := s.ensureNotRegistered(ctx, email); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return StatusResult{Status: StatusRegistered}, nil
		}
		return StatusResult{}, err
	}

	reg, err := s.findPending(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNoPendingRegistration) {
			return StatusResult{Status: StatusAvailable}, nil
		}
		return StatusResult{}, err
	}
	if reg.Expired(s.now()) {
		s.discard(ctx, reg)
		return StatusResult{Status: StatusAvailable}, nil
	}

	return StatusResult{
		Status:         StatusPending,
		RegistrationID: reg.ID,
		ExpiresAt:      reg.OTPExpiresAt,
	}, nil
}

func (s *Service) checkEmail(ctx context.Context, email string) (string, error) {
	email = identity.NormalizeEmail(email)
	if err := s.validate.VarCtx(ctx, email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return email, nil
}

func (s *Service) ensureNotRegistered(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrAlreadyRegistered
	case errors.Is(err, identity.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("lookup account: %w", err)
	}
}

func (s *Service) findPending(ctx context.Context, email string) (pending.Registration, error) {
	reg, err := s.pending.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pending.ErrNotFound) {
			return pending.Registration{}, ErrNoPendingRegistration
		}
		return pending.Registration{}, fmt.Errorf("lookup pending registration: %w", err)
	}
	return reg, nil
}

// reissue replaces the code on the live registration and mails it. The new
// expiry never runs past the end of the record's retention window, since the
// store drops the record at that point.
func (s *Service) reissue(ctx context.Context, current pending.Registration) (Pending, error) {
	code, expiresAt := s.codes.Generate()
	// Last instant the store still holds the record.
	if lastLive := current.CreatedAt.Add(s.pending.Retention() - time.Millisecond); expiresAt.After(lastLive) {
		expiresAt = lastLive
	}
	reg, err := s.pending.RefreshCode(ctx, current.Email, code, expiresAt)
	if err != nil {
		if errors.Is(err, pending.ErrNotFound) {
			return Pending{}, ErrNoPendingRegistration
		}
		return Pending{}, fmt.Errorf("refresh otp: %w", err)
	}
	s.logger.Debug().Str("registration_id", reg.ID).Msg("otp reissued")
	return s.dispatch(ctx, reg)
}

func (s *Service) dispatch(ctx context.Context, reg pending.Registration) (Pending, error) {
	result := Pending{
		RegistrationID: reg.ID,
		Email:          reg.Email,
		ExpiresAt:      reg.OTPExpiresAt,
	}
	if err := s.notifier.Send(ctx, s.codeMessage(reg)); err != nil {
		s.logger.Warn().Err(err).Str("registration_id", reg.ID).Msg("otp delivery failed")
		return result, fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}
	return result, nil
}

func (s *Service) codeMessage(reg pending.Registration) notification.Message {
	minutes := int(math.Ceil(s.codes.TTL().Minutes()))
	return notification.Message{
		Kind:        notification.KindAccountRegistration,
		Destination: reg.Email,
		Subject:     notification.FormatKind(notification.KindAccountRegistration) + " Code",
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour verification code is %s. It expires in %d minutes.\n\nIf you did not sign up, you can ignore this email.\n",
			reg.FullName, reg.OTP, minutes,
		),
	}
}

// discard drops a registration that can no longer be used. Failures are only
// logged since the record ages out on its own.
func (s *Service) discard(ctx context.Context, reg pending.Registration) {
	if err := s.pending.DeleteByID(ctx, reg.ID); err != nil {
		s.logger.Warn().Err(err).Str("registration_id", reg.ID).Msg("discard pending registration")
	}
}
