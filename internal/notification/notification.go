package notification

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// KindAccountRegistration marks the code sent to confirm a new account.
	KindAccountRegistration = "account_registration"
)

// ErrNoRecipient is returned when a message has no destination address.
var ErrNoRecipient = errors.New("no recipient specified")

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Subject     string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// FormatKind renders a kind such as "account_registration" as "Account Registration".
func FormatKind(kind string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(kind, "_", " "))
}

// LoggerNotifier writes notifications to the logger instead of delivering them.
// Used with MAIL_DRIVER=log in local development.
type LoggerNotifier struct {
	logger *zerolog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *zerolog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if message.Destination == "" {
		return ErrNoRecipient
	}
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info().
		Str("kind", message.Kind).
		Str("destination", message.Destination).
		Str("subject", message.Subject).
		Str("body", message.Body).
		Msg("notification")
	return nil
}
