package testutil

import (
	"context"

	"github.com/flexprice/dunning/internal/domain/payment"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

// NewInMemoryPaymentStore creates a new in-memory payment store
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func copyPayment(p *payment.Payment) *payment.Payment {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func paymentFilterFn(ctx context.Context, p *payment.Payment, filter interface{}) bool {
	if !p.IsActive() {
		return false
	}

	f, ok := filter.(*types.PaymentFilter)
	if !ok || f == nil {
		return true
	}

	if f.InvoiceID != "" && p.InvoiceID != f.InvoiceID {
		return false
	}
	if len(f.PaymentIDs) > 0 && !lo.Contains(f.PaymentIDs, p.ID) {
		return false
	}
	return true
}

func paymentSortFn(i, j *payment.Payment) bool {
	if !i.PaymentDate.Equal(j.PaymentDate) {
		return i.PaymentDate.Before(j.PaymentDate)
	}
	return i.CreatedAt.Before(j.CreatedAt)
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyPayment(p))
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyPayment(p), nil
}

// Delete soft deletes the payment
func (s *InMemoryPaymentStore) Delete(ctx context.Context, p *payment.Payment) error {
	return s.InMemoryStore.Mutate(ctx, p.ID, func(stored *payment.Payment) (*payment.Payment, error) {
		if !stored.IsActive() {
			return nil, payment.NewNotFoundError(stored.InvoiceID, stored.ID)
		}
		updated := copyPayment(stored)
		updated.Status = types.StatusDeleted
		updated.UpdatedAt = p.UpdatedAt
		updated.UpdatedBy = p.UpdatedBy
		return updated, nil
	})
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	items, err := s.InMemoryStore.List(ctx, filter, paymentFilterFn, paymentSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *payment.Payment, _ int) *payment.Payment {
		return copyPayment(p)
	}), nil
}
