package email

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/flexprice/dunning/internal/config"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/resend/resend-go/v2"
)

// EmailClient wraps the resend API client
type EmailClient struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
	replyTo     string
}

// Config holds the email client configuration
type Config struct {
	Enabled     bool
	APIKey      string
	FromAddress string
	ReplyTo     string

	// HTTPClient and BaseURL override the resend defaults, mostly for tests
	HTTPClient *http.Client
	BaseURL    string
}

// ConfigFrom builds the client configuration from the application configuration
func ConfigFrom(cfg *config.Configuration) Config {
	return Config{
		Enabled:     cfg.Email.Enabled,
		APIKey:      cfg.Email.ResendAPIKey,
		FromAddress: cfg.Email.FromAddress,
		ReplyTo:     cfg.Email.ReplyTo,
	}
}

// Email is a single outgoing message
type Email struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string

	// IdempotencyKey lets the provider drop a duplicate of an already accepted request
	IdempotencyKey string
}

// NewEmailClient creates a new email client. A disabled config or a missing api key
// yields a client that refuses to send.
func NewEmailClient(cfg Config) (*EmailClient, error) {
	if !cfg.Enabled || cfg.APIKey == "" {
		return &EmailClient{enabled: false}, nil
	}

	client := resend.NewCustomClient(cfg.HTTPClient, cfg.APIKey)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Invalid email provider base url").
				Mark(ierr.ErrValidation)
		}
		client.BaseURL = u
	}

	return &EmailClient{
		client:      client,
		enabled:     true,
		fromAddress: cfg.FromAddress,
		replyTo:     cfg.ReplyTo,
	}, nil
}

// IsEnabled returns whether the email client is enabled
func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

// GetFromAddress returns the default from address
func (c *EmailClient) GetFromAddress() string {
	return c.fromAddress
}

// GetReplyTo returns the default reply-to address
func (c *EmailClient) GetReplyTo() string {
	return c.replyTo
}

// SendEmail sends e and returns the provider message id. Provider errors are returned
// unwrapped so callers can inspect them.
func (c *EmailClient) SendEmail(ctx context.Context, e Email) (string, error) {
	if !c.enabled {
		return "", ierr.NewError("email client is disabled").
			WithHint("Email delivery is not configured").
			Mark(ierr.ErrInvalidOperation)
	}

	params := &resend.SendEmailRequest{
		From:    e.From,
		To:      []string{e.To},
		Subject: e.Subject,
		Html:    e.HTML,
		Text:    e.Text,
		ReplyTo: e.ReplyTo,
	}
	if params.From == "" {
		params.From = c.fromAddress
	}
	if params.ReplyTo == "" {
		params.ReplyTo = c.replyTo
	}
	for name, value := range e.Tags {
		params.Tags = append(params.Tags, resend.Tag{Name: name, Value: value})
	}

	var opts *resend.SendEmailOptions
	if e.IdempotencyKey != "" {
		opts = &resend.SendEmailOptions{IdempotencyKey: e.IdempotencyKey}
	}

	sent, err := c.client.Emails.SendWithOptions(ctx, params, opts)
	if err != nil {
		return "", err
	}

	return sent.Id, nil
}
