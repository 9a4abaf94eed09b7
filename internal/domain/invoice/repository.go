package invoice

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetForUpdate retrieves an invoice by ID and locks it until the surrounding
	// transaction ends. Outside a transaction it behaves like Get.
	GetForUpdate(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, invoice *Invoice) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// IncrementReminderCount atomically bumps reminder_count and stamps last_reminder_sent_at
	IncrementReminderCount(ctx context.Context, id string, sentAt time.Time) error
}
