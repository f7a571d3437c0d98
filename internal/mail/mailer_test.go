// AngelaMos | 2026
// mailer_test.go

package mail

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/identity-service/internal/config"
)

func TestNewSelectsDriver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	console, err := New(config.MailConfig{Driver: "console"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleMailer{}, console)

	smtp, err := New(config.MailConfig{
		Driver:    "smtp",
		Host:      "smtp.example.com",
		Port:      587,
		FromName:  "Identity Service",
		FromEmail: "noreply@example.com",
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, smtp)

	_, err = New(config.MailConfig{Driver: "telegraph"}, logger)
	require.Error(t, err)
}

func TestConsoleMailerLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	mailer := NewConsoleMailer(logger)
	err := mailer.Send(context.Background(), Message{
		To:      "dev@example.com",
		Subject: "Verify your email",
		Text:    "Your verification code is 123456",
	})

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "dev@example.com")
	assert.Contains(t, out, "123456")
}

func TestConsoleMailerHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mailer := NewConsoleMailer(nil)
	err := mailer.Send(ctx, Message{To: "dev@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
