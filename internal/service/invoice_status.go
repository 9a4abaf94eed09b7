package service

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/domain/events"
	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/domain/latefee"
	"github.com/flexprice/dunning/internal/domain/payment"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// balance is the ledger view of an invoice at one instant. It is always derived
// from the stored payments and never persisted.
type balance struct {
	payments  []*payment.Payment
	totalPaid decimal.Decimal
	remaining decimal.Decimal
	fee       latefee.Result
}

// settled reports whether nothing, fees included, is left to pay
func (b *balance) settled() bool {
	return !b.fee.TotalPayable.IsPositive()
}

func computeBalance(inv *invoice.Invoice, payments []*payment.Payment, asOf time.Time) *balance {
	paid := payment.TotalPaid(payments)
	remaining := types.RoundToCurrency(decimal.Max(inv.Total.Sub(paid), decimal.Zero), inv.Currency)

	return &balance{
		payments:  payments,
		totalPaid: paid,
		remaining: remaining,
		fee: latefee.Compute(latefee.Input{
			DueDate:          inv.DueDate,
			AsOf:             asOf,
			RemainingBalance: remaining,
			Policy:           inv.LateFeePolicy,
			Paid:             inv.IsPaid(),
			Currency:         inv.Currency,
		}),
	}
}

func (p ServiceParams) loadBalance(ctx context.Context, inv *invoice.Invoice, asOf time.Time) (*balance, error) {
	filter := types.NewNoLimitPaymentFilter()
	filter.InvoiceID = inv.ID

	payments, err := p.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return computeBalance(inv, payments, asOf), nil
}

// statusResolver applies the payment driven and manual status transitions of an invoice.
// Callers run it inside the transaction that locked the invoice and publish the
// returned events after commit.
type statusResolver struct {
	ServiceParams
}

func (r *statusResolver) resolve(ctx context.Context, inv *invoice.Invoice, bal *balance, at time.Time) ([]*events.Event, error) {
	switch {
	case inv.InvoiceStatus == types.InvoiceStatusSent && bal.settled():
		return r.markPaid(ctx, inv, types.PaidSourceLedger, at)
	case inv.IsLedgerPaid() && bal.remaining.IsPositive():
		return r.revertToSent(ctx, inv, bal, at)
	}
	return nil, nil
}

func (r *statusResolver) markPaid(ctx context.Context, inv *invoice.Invoice, source types.PaidSource, at time.Time) ([]*events.Event, error) {
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.PaidSource = lo.ToPtr(source)
	inv.PaidAt = lo.ToPtr(at)
	inv.Touch(ctx, at)

	if err := r.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	r.Logger.Infow("invoice paid",
		"invoice_id", inv.ID,
		"paid_source", source,
	)

	evs := []*events.Event{
		events.NewEvent(ctx, types.AuditInvoicePaid, inv.AccountID, inv.ID, at, map[string]interface{}{
			"paid_source": source,
		}),
	}

	cancelled, err := r.cancelScheduled(ctx, inv, types.ReminderCancelInvoicePaid, at)
	if err != nil {
		return nil, err
	}
	return append(evs, cancelled...), nil
}

func (r *statusResolver) revertToSent(ctx context.Context, inv *invoice.Invoice, bal *balance, at time.Time) ([]*events.Event, error) {
	inv.InvoiceStatus = types.InvoiceStatusSent
	inv.PaidSource = nil
	inv.PaidAt = nil
	inv.Touch(ctx, at)

	if err := r.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	r.Logger.Infow("invoice reverted to sent after payment removal",
		"invoice_id", inv.ID,
		"remaining_balance", bal.remaining.String(),
	)

	return []*events.Event{
		events.NewEvent(ctx, types.AuditInvoicePaymentReverted, inv.AccountID, inv.ID, at, map[string]interface{}{
			"remaining_balance": bal.remaining.String(),
		}),
	}, nil
}

func (r *statusResolver) markCancelled(ctx context.Context, inv *invoice.Invoice, at time.Time) ([]*events.Event, error) {
	inv.InvoiceStatus = types.InvoiceStatusCancelled
	inv.CancelledAt = lo.ToPtr(at)
	inv.Touch(ctx, at)

	if err := r.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	evs := []*events.Event{
		events.NewEvent(ctx, types.AuditInvoiceCancelled, inv.AccountID, inv.ID, at, nil),
	}

	cancelled, err := r.cancelScheduled(ctx, inv, types.ReminderCancelInvoiceCancelled, at)
	if err != nil {
		return nil, err
	}
	return append(evs, cancelled...), nil
}

// cancelScheduled cancels only SCHEDULED records; sent and cancelled history is left alone
func (r *statusResolver) cancelScheduled(ctx context.Context, inv *invoice.Invoice, reason types.ReminderFailureReason, at time.Time) ([]*events.Event, error) {
	records, err := r.ReminderRepo.CancelScheduled(ctx, inv.ID, reason, at)
	if err != nil {
		return nil, err
	}

	evs := make([]*events.Event, 0, len(records))
	for _, rec := range records {
		evs = append(evs, events.NewEvent(ctx, types.AuditReminderCancelled, inv.AccountID, inv.ID, at, map[string]interface{}{
			"record_id": rec.ID,
			"kind":      rec.Kind,
			"reason":    reason,
		}))
	}
	return evs, nil
}

// publishEvents sends audit events. Publishing failures are logged and never fail the caller.
func (p ServiceParams) publishEvents(ctx context.Context, evs []*events.Event) {
	if p.EventPublisher == nil {
		return
	}
	for _, ev := range evs {
		if err := p.EventPublisher.Publish(ctx, ev); err != nil {
			p.Logger.Errorw("failed to publish audit event",
				"event_name", ev.EventName,
				"invoice_id", ev.InvoiceID,
				"error", err,
			)
		}
	}
}

// getOwnedInvoice loads the invoice and hides invoices of other accounts behind not found
func (p ServiceParams) getOwnedInvoice(ctx context.Context, id string, forUpdate bool) (*invoice.Invoice, error) {
	var (
		inv *invoice.Invoice
		err error
	)
	if forUpdate {
		inv, err = p.InvoiceRepo.GetForUpdate(ctx, id)
	} else {
		inv, err = p.InvoiceRepo.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	if accountID := types.GetAccountID(ctx); accountID != "" && accountID != inv.AccountID {
		return nil, invoice.NewNotFoundError(id)
	}
	return inv, nil
}
