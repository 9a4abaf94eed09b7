package testutil

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

// Helper to copy invoice
func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	return &c
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if inv.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.InvoiceIDs) > 0 && !lo.Contains(f.InvoiceIDs, inv.ID) {
		return false
	}
	if f.AccountID != "" && inv.AccountID != f.AccountID {
		return false
	}
	if len(f.InvoiceStatus) > 0 && !lo.Contains(f.InvoiceStatus, inv.InvoiceStatus) {
		return false
	}
	if f.DueBefore != nil && !inv.DueDate.Before(*f.DueBefore) {
		return false
	}
	if f.RemindersOnly && !inv.ReminderPolicy.IsEnabled() {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	if !i.DueDate.Equal(j.DueDate) {
		return i.DueDate.Before(j.DueDate)
	}
	return i.ID < j.ID
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return nil
	}
	return s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv))
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, invoice.NewNotFoundError(id)
	}
	return copyInvoice(inv), nil
}

// GetForUpdate relies on the mock client serialising transactions
func (s *InMemoryInvoiceStore) GetForUpdate(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.Get(ctx, id)
}

// Update keeps the reminder counters, which only IncrementReminderCount writes
func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	err := s.InMemoryStore.Mutate(ctx, inv.ID, func(stored *invoice.Invoice) (*invoice.Invoice, error) {
		updated := copyInvoice(inv)
		updated.ReminderCount = stored.ReminderCount
		updated.LastReminderSentAt = stored.LastReminderSentAt
		return updated, nil
	})
	if err != nil {
		return invoice.NewNotFoundError(inv.ID)
	}
	return nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	}), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func (s *InMemoryInvoiceStore) IncrementReminderCount(ctx context.Context, id string, sentAt time.Time) error {
	err := s.InMemoryStore.Mutate(ctx, id, func(stored *invoice.Invoice) (*invoice.Invoice, error) {
		updated := copyInvoice(stored)
		updated.ReminderCount++
		updated.LastReminderSentAt = lo.ToPtr(sentAt)
		updated.UpdatedAt = sentAt
		return updated, nil
	})
	if err != nil {
		return invoice.NewNotFoundError(id)
	}
	return nil
}
