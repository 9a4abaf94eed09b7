package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/postgres"
	"github.com/flexprice/dunning/internal/types"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

// MockPostgresClient is a mock implementation of postgres client for testing.
// Transactions are serialised so row locks taken inside them hold for the whole function.
// Nothing is rolled back on error.
type MockPostgresClient struct {
	mu     sync.Mutex
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) *MockPostgresClient {
	return &MockPostgresClient{
		logger: logger,
	}
}

// WithTx executes the given function within a transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	// If we're already in a transaction, reuse it
	if c.inTx(ctx) {
		return fn(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return fn(context.WithValue(ctx, types.CtxDBTransaction, c))
}

func (c *MockPostgresClient) inTx(ctx context.Context) bool {
	tx, ok := ctx.Value(types.CtxDBTransaction).(*MockPostgresClient)
	return ok && tx == c
}
