// AngelaMos | 2026
// mailer.go

// Package mail is the outbound notification channel. Delivery is binary:
// Send either succeeds or returns a single error, and callers own any
// compensating action.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/angelamos/identity-service/internal/config"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New selects the provider once at startup from the configured driver.
func New(cfg config.MailConfig, logger *slog.Logger) (Mailer, error) {
	switch cfg.Driver {
	case "smtp":
		return NewSMTPMailer(cfg)
	case "console":
		return NewConsoleMailer(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}
