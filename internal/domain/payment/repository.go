package payment

import (
	"context"

	"github.com/flexprice/dunning/internal/types"
)

// Repository defines the interface for payment persistence
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	// Delete soft deletes the payment so it no longer counts towards the ledger
	Delete(ctx context.Context, payment *Payment) error
	// List returns active payments ordered by payment date then creation time
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
}
