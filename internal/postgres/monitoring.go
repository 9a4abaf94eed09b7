package postgres

import (
	"context"

	"github.com/flexprice/dunning/internal/logger"
	sentryService "github.com/flexprice/dunning/internal/sentry"
	"github.com/flexprice/dunning/internal/types"
	"github.com/getsentry/sentry-go"
)

// SentryClient wraps the transaction client with Sentry spans
type SentryClient struct {
	client IClient
	sentry *sentryService.Service
	logger *logger.Logger
}

// NewSentryClient creates a new Sentry-instrumented Postgres client
func NewSentryClient(client IClient, sentry *sentryService.Service, logger *logger.Logger) IClient {
	return &SentryClient{
		client: client,
		sentry: sentry,
		logger: logger,
	}
}

// WithTx opens a span per outermost transaction. Nested calls run inside the parent span.
func (c *SentryClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if _, nested := GetTx(ctx); nested {
		return c.client.WithTx(ctx, fn)
	}

	span, spanCtx := c.sentry.StartDBSpan(ctx, "postgres.transaction", map[string]interface{}{
		"account_id": types.GetAccountID(ctx),
		"request_id": types.GetRequestID(ctx),
	})
	if span == nil {
		return c.client.WithTx(ctx, fn)
	}
	defer span.Finish()

	err := c.client.WithTx(spanCtx, fn)
	if err != nil {
		span.Status = sentry.SpanStatusAborted
		span.SetData("error", err.Error())
		return err
	}
	span.Status = sentry.SpanStatusOK
	return nil
}
