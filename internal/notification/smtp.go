package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the outbound mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier delivers messages as plain text email.
type SMTPNotifier struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTPNotifier builds a notifier around a single gomail dialer. The
// dialer is created once at startup and shared by all requests.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("missing SMTP host")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("missing SMTP from address")
	}
	return &SMTPNotifier{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

// Send dials the server and delivers the message. If ctx ends first Send
// returns ctx.Err(); the in-flight SMTP exchange is left to finish on its own.
func (n *SMTPNotifier) Send(ctx context.Context, message Message) error {
	if message.Destination == "" {
		return ErrNoRecipient
	}

	msg := n.build(message)

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send %s mail: %w", message.Kind, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *SMTPNotifier) build(message Message) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", message.Destination)
	msg.SetHeader("Subject", message.Subject)
	msg.SetBody("text/plain", message.Body)
	return msg
}
