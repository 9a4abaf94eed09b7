package service

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/domain/reminder"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
)

// ReminderScheduler decides which reminder kinds are due for an invoice
type ReminderScheduler interface {
	// DueKinds returns the kinds whose threshold has been crossed and that have not been delivered,
	// in ascending severity
	DueKinds(ctx context.Context, inv *invoice.Invoice, asOf time.Time) ([]types.ReminderKind, error)
}

type reminderScheduler struct {
	ServiceParams
}

func NewReminderScheduler(params ServiceParams) ReminderScheduler {
	return &reminderScheduler{ServiceParams: params}
}

func (s *reminderScheduler) DueKinds(ctx context.Context, inv *invoice.Invoice, asOf time.Time) ([]types.ReminderKind, error) {
	if inv.InvoiceStatus != types.InvoiceStatusSent || !inv.ReminderPolicy.IsEnabled() {
		return nil, nil
	}
	if !types.IsPastDate(inv.DueDate, asOf) {
		return nil, nil
	}

	bal, err := s.loadBalance(ctx, inv, asOf)
	if err != nil {
		return nil, err
	}
	if bal.settled() {
		return nil, nil
	}

	records, err := s.ReminderRepo.List(ctx, &types.ReminderRecordFilter{InvoiceID: inv.ID})
	if err != nil {
		return nil, err
	}

	daysOverdue := bal.fee.DaysOverdue
	due := make([]types.ReminderKind, 0, len(types.ReminderKinds))
	for _, kind := range types.ReminderKinds {
		if !inv.ReminderPolicy.Allows(kind) {
			continue
		}
		if daysOverdue < s.thresholdFor(inv, kind) {
			continue
		}
		if reminder.FindDelivered(records, kind) != nil {
			continue
		}
		if blocked := s.lastFailureBlocks(records, kind); blocked {
			s.Logger.Debugw("skipping reminder kind after permanent failure",
				"invoice_id", inv.ID,
				"kind", kind,
			)
			continue
		}
		due = append(due, kind)
	}
	return due, nil
}

func (s *reminderScheduler) thresholdFor(inv *invoice.Invoice, kind types.ReminderKind) int {
	if days, ok := inv.ReminderPolicy.ThresholdFor(kind); ok {
		return days
	}
	return s.Config.Reminder.Thresholds.For(kind)
}

// lastFailureBlocks reports whether the latest failure of kind can not succeed on retry.
// Those occasions are left for a manual send once the recipient or domain is fixed.
func (s *reminderScheduler) lastFailureBlocks(records []*reminder.Record, kind types.ReminderKind) bool {
	res := reminder.Resolve(records, kind)
	if res.Action != reminder.ResolutionReuseFailed {
		return false
	}
	return !lo.FromPtr(res.Record.FailureReason).IsRetryable()
}
