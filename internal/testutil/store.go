package testutil

import (
	"context"
	"sort"
	"sync"

	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
)

// FilterFunc decides whether item matches the repository filter passed to List
type FilterFunc[T any] func(ctx context.Context, item T, filter interface{}) bool

// SortFunc is a less function applied after filtering
type SortFunc[T any] func(i, j T) bool

// InMemoryStore is the map behind every fake repository. The typed stores
// copy entities in and out so callers never share pointers with it.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
	}
}

func notFound(id string) error {
	return ierr.NewError("item not found").
		WithHint("The requested resource was not found").
		WithReportableDetails(map[string]any{"id": id}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryStore[T]) Create(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewError("item already exists").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrAlreadyExists)
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		var zero T
		return zero, notFound(id)
	}
	return item, nil
}

// List filters, sorts, then pages with the filter's limit and offset when it is a types.BaseFilter
func (s *InMemoryStore[T]) List(ctx context.Context, filter interface{}, filterFn FilterFunc[T], sortFn SortFunc[T]) ([]T, error) {
	s.mu.RLock()
	result := s.matching(ctx, filter, filterFn)
	s.mu.RUnlock()

	if sortFn != nil {
		sort.SliceStable(result, func(i, j int) bool {
			return sortFn(result[i], result[j])
		})
	}

	f, ok := filter.(types.BaseFilter)
	if !ok || f.IsUnlimited() {
		return result, nil
	}
	return lo.Subset(result, f.GetOffset(), uint(f.GetLimit())), nil
}

func (s *InMemoryStore[T]) Count(ctx context.Context, filter interface{}, filterFn FilterFunc[T]) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matching(ctx, filter, filterFn)), nil
}

// matching must be called with the lock held
func (s *InMemoryStore[T]) matching(ctx context.Context, filter interface{}, filterFn FilterFunc[T]) []T {
	result := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if filterFn == nil || filterFn(ctx, item, filter) {
			result = append(result, item)
		}
	}
	return result
}

func (s *InMemoryStore[T]) Update(ctx context.Context, id string, item T) error {
	return s.Mutate(ctx, id, func(T) (T, error) { return item, nil })
}

// Mutate applies fn under the write lock, the in-memory
// equivalent of a single row UPDATE ... SET col = col + 1
func (s *InMemoryStore[T]) Mutate(ctx context.Context, id string, fn func(item T) (T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return notFound(id)
	}
	updated, err := fn(item)
	if err != nil {
		return err
	}
	s.items[id] = updated
	return nil
}

func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}

// CheckAccountFilter reports whether an item of itemAccountID is visible to the account in ctx
func CheckAccountFilter(ctx context.Context, itemAccountID string) bool {
	accountID := types.GetAccountID(ctx)
	return accountID == "" || itemAccountID == "" || itemAccountID == accountID
}
