package testutil

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/domain/reminder"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
)

// InMemoryReminderStore implements reminder.Repository. Like the partial unique index
// in postgres it refuses a second SENT record for the same invoice and kind.
type InMemoryReminderStore struct {
	*InMemoryStore[*reminder.Record]
}

func NewInMemoryReminderStore() *InMemoryReminderStore {
	return &InMemoryReminderStore{
		InMemoryStore: NewInMemoryStore[*reminder.Record](),
	}
}

func copyRecord(r *reminder.Record) *reminder.Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func reminderFilterFn(ctx context.Context, r *reminder.Record, filter interface{}) bool {
	f, ok := filter.(*types.ReminderRecordFilter)
	if !ok || f == nil {
		return true
	}

	if f.InvoiceID != "" && r.InvoiceID != f.InvoiceID {
		return false
	}
	if len(f.Kinds) > 0 && !lo.Contains(f.Kinds, r.Kind) {
		return false
	}
	if len(f.ReminderStatus) > 0 && !lo.Contains(f.ReminderStatus, r.ReminderStatus) {
		return false
	}
	return true
}

// newest first
func reminderSortFn(i, j *reminder.Record) bool {
	if !i.CreatedAt.Equal(j.CreatedAt) {
		return i.CreatedAt.After(j.CreatedAt)
	}
	return i.UpdatedAt.After(j.UpdatedAt)
}

func (s *InMemoryReminderStore) Create(ctx context.Context, r *reminder.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.checkSentUnique(ctx, r); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, r.ID, copyRecord(r))
}

func (s *InMemoryReminderStore) Get(ctx context.Context, id string) (*reminder.Record, error) {
	r, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyRecord(r), nil
}

func (s *InMemoryReminderStore) Update(ctx context.Context, r *reminder.Record) error {
	if err := s.checkSentUnique(ctx, r); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, r.ID, copyRecord(r))
}

func (s *InMemoryReminderStore) List(ctx context.Context, filter *types.ReminderRecordFilter) ([]*reminder.Record, error) {
	items, err := s.InMemoryStore.List(ctx, filter, reminderFilterFn, reminderSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(r *reminder.Record, _ int) *reminder.Record {
		return copyRecord(r)
	}), nil
}

func (s *InMemoryReminderStore) CancelScheduled(ctx context.Context, invoiceID string, reason types.ReminderFailureReason, at time.Time) ([]*reminder.Record, error) {
	scheduled, err := s.List(ctx, &types.ReminderRecordFilter{
		InvoiceID:      invoiceID,
		ReminderStatus: []types.ReminderStatus{types.ReminderStatusScheduled},
	})
	if err != nil {
		return nil, err
	}

	cancelled := make([]*reminder.Record, 0, len(scheduled))
	for _, r := range scheduled {
		err := s.InMemoryStore.Mutate(ctx, r.ID, func(stored *reminder.Record) (*reminder.Record, error) {
			updated := copyRecord(stored)
			updated.ReminderStatus = types.ReminderStatusCancelled
			updated.FailureReason = lo.ToPtr(reason)
			updated.UpdatedAt = at
			updated.UpdatedBy = types.GetUserID(ctx)
			return updated, nil
		})
		if err != nil {
			return nil, err
		}
		updated, err := s.Get(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		cancelled = append(cancelled, updated)
	}
	return cancelled, nil
}

func (s *InMemoryReminderStore) checkSentUnique(ctx context.Context, r *reminder.Record) error {
	if r.ReminderStatus != types.ReminderStatusSent {
		return nil
	}

	sent, err := s.List(ctx, &types.ReminderRecordFilter{
		InvoiceID:      r.InvoiceID,
		Kinds:          []types.ReminderKind{r.Kind},
		ReminderStatus: []types.ReminderStatus{types.ReminderStatusSent},
	})
	if err != nil {
		return err
	}
	for _, other := range sent {
		if other.ID != r.ID {
			return ierr.NewError("reminder already sent for kind").
				WithReportableDetails(map[string]any{
					"invoice_id": r.InvoiceID,
					"kind":       r.Kind,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}
	return nil
}
