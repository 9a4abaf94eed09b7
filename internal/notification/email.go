package notification

import (
	"context"

	"github.com/flexprice/dunning/internal/email"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/types"
)

// EmailSender delivers messages through the resend email client
type EmailSender struct {
	client *email.EmailClient
	logger *logger.Logger
}

// NewEmailSender creates a Sender backed by client
func NewEmailSender(client *email.EmailClient, logger *logger.Logger) *EmailSender {
	return &EmailSender{
		client: client,
		logger: logger,
	}
}

func (s *EmailSender) Send(ctx context.Context, msg Message) (string, error) {
	id, err := s.client.SendEmail(ctx, email.Email{
		From:           msg.From,
		To:             msg.To,
		ReplyTo:        msg.ReplyTo,
		Subject:        msg.Subject,
		HTML:           msg.HTML,
		Text:           msg.Text,
		Tags:           msg.Tags,
		IdempotencyKey: msg.IdempotencyKey,
	})
	if err != nil {
		category := categorize(err)
		s.logger.Warnw("email delivery failed",
			"to", msg.To,
			"category", category,
			"error", err,
		)
		return "", NewSendError(category, err)
	}

	s.logger.Debugw("email delivered", "to", msg.To, "message_id", id)
	return id, nil
}

// LogSender only logs messages. It is used when no email provider is configured.
type LogSender struct {
	logger *logger.Logger
}

func NewLogSender(logger *logger.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) (string, error) {
	id := types.GenerateUUIDWithPrefix("log")
	s.logger.Infow("email delivery disabled, message logged",
		"to", msg.To,
		"subject", msg.Subject,
		"message_id", id,
	)
	return id, nil
}

// NewSender picks the email sender when the client is enabled, the log sender otherwise
func NewSender(client *email.EmailClient, logger *logger.Logger) Sender {
	if client != nil && client.IsEnabled() {
		return NewEmailSender(client, logger)
	}
	return NewLogSender(logger)
}
