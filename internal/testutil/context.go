package testutil

import (
	"context"

	"github.com/flexprice/dunning/internal/types"
)

// SetupContext returns a request scoped context for the default test account
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}
