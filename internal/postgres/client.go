package postgres

import (
	"context"

	sentryService "github.com/flexprice/dunning/internal/sentry"
	"go.uber.org/fx"
)

// IClient defines the transaction boundary used by services
type IClient interface {
	// WithTx wraps the given function in a transaction. Nested calls reuse the
	// outer transaction through a savepoint.
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

var _ IClient = (*DB)(nil)

// Module provides an fx.Option to integrate the sqlx database with the application
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewDB,
			NewClient,
		),
	)
}

// NewClient exposes the database as the transaction client instrumented with sentry spans
func NewClient(db *DB, sentry *sentryService.Service) IClient {
	return NewSentryClient(db, sentry, db.logger)
}
