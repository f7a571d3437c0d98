// AngelaMos | 2026
// console.go

package mail

import (
	"context"
	"log/slog"
)

// ConsoleMailer logs messages instead of delivering them. Development only.
type ConsoleMailer struct {
	logger *slog.Logger
}

func NewConsoleMailer(logger *slog.Logger) *ConsoleMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleMailer{logger: logger}
}

func (m *ConsoleMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "mock mail sent",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
		"html", msg.HTML,
	)

	return nil
}
