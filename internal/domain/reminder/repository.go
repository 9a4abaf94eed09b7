package reminder

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/types"
)

// Repository defines the interface for reminder record persistence
type Repository interface {
	Create(ctx context.Context, record *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// Update persists the record's status fields as a single row update
	Update(ctx context.Context, record *Record) error
	// List returns matching records newest first
	List(ctx context.Context, filter *types.ReminderRecordFilter) ([]*Record, error)
	// CancelScheduled cancels every SCHEDULED record of the invoice and returns the cancelled records.
	// SENT, FAILED and CANCELLED records are left untouched.
	CancelScheduled(ctx context.Context, invoiceID string, reason types.ReminderFailureReason, at time.Time) ([]*Record, error)
}
