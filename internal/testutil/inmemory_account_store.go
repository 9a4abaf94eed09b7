package testutil

import (
	"context"

	"github.com/flexprice/dunning/internal/domain/account"
)

// InMemoryAccountStore implements account.Repository
type InMemoryAccountStore struct {
	*InMemoryStore[*account.Account]
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		InMemoryStore: NewInMemoryStore[*account.Account](),
	}
}

func copyAccount(a *account.Account) *account.Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func (s *InMemoryAccountStore) Create(ctx context.Context, a *account.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, a.ID, copyAccount(a))
}

func (s *InMemoryAccountStore) Get(ctx context.Context, id string) (*account.Account, error) {
	a, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyAccount(a), nil
}

func (s *InMemoryAccountStore) Update(ctx context.Context, a *account.Account) error {
	return s.InMemoryStore.Update(ctx, a.ID, copyAccount(a))
}

func (s *InMemoryAccountStore) ListActive(ctx context.Context) ([]*account.Account, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, a *account.Account, _ interface{}) bool {
		return a.IsActive()
	}, func(i, j *account.Account) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	result := make([]*account.Account, len(items))
	for i, a := range items {
		result[i] = copyAccount(a)
	}
	return result, nil
}
