package service

import (
	"context"

	"github.com/flexprice/dunning/internal/api/dto"
	"github.com/flexprice/dunning/internal/domain/invoice"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/sourcegraph/conc/panics"
)

// ReminderReconciliation is the periodic pass that finds and dispatches every due reminder.
// It is safe to re-run because dispatch converges on existing records.
type ReminderReconciliation interface {
	// Run never fails; per invoice errors are logged, reported and counted in the summary
	Run(ctx context.Context) *dto.ReconciliationSummary
}

type reminderReconciliation struct {
	ServiceParams
	scheduler  ReminderScheduler
	dispatcher ReminderDispatcher
}

func NewReminderReconciliation(params ServiceParams, scheduler ReminderScheduler, dispatcher ReminderDispatcher) ReminderReconciliation {
	return &reminderReconciliation{
		ServiceParams: params,
		scheduler:     scheduler,
		dispatcher:    dispatcher,
	}
}

func (s *reminderReconciliation) Run(ctx context.Context) *dto.ReconciliationSummary {
	summary := &dto.ReconciliationSummary{StartedAt: s.now()}
	defer func() {
		summary.EndedAt = s.now()
	}()

	if !s.Config.Reminder.Enabled {
		s.Logger.Infow("reminder reconciliation disabled")
		return summary
	}

	span, ctx := s.Sentry.StartTransaction(ctx, "reminder.reconciliation")
	if span != nil {
		defer span.Finish()
	}

	accounts, err := s.AccountRepo.ListActive(ctx)
	if err != nil {
		s.Logger.Errorw("failed to list accounts for reconciliation", "error", err)
		s.Sentry.CaptureException(err)
		summary.Errors++
		s.Metrics.ObserveReconciliation("error", 0, s.now())
		return summary
	}

	for _, acct := range accounts {
		if ctx.Err() != nil {
			s.Logger.Warnw("reconciliation interrupted", "error", ctx.Err())
			summary.Errors++
			break
		}
		s.reconcileAccount(ctx, acct.ID, summary)
	}

	status := "ok"
	if summary.Errors > 0 {
		status = "partial"
	}
	s.Metrics.ObserveReconciliation(status, summary.Found, s.now())

	s.Logger.Infow("reminder reconciliation finished",
		"accounts", len(accounts),
		"invoices", summary.Invoices,
		"found", summary.Found,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"vetoed", summary.Vetoed,
		"cancelled", summary.Cancelled,
		"errors", summary.Errors,
	)
	return summary
}

func (s *reminderReconciliation) reconcileAccount(ctx context.Context, accountID string, summary *dto.ReconciliationSummary) {
	today := types.StartOfDay(s.now())

	filter := types.NewNoLimitInvoiceFilter()
	filter.AccountID = accountID
	filter.InvoiceStatus = []types.InvoiceStatus{types.InvoiceStatusSent}
	filter.DueBefore = &today
	filter.RemindersOnly = true

	invoices, err := s.InvoiceRepo.List(types.SetAccountID(ctx, accountID), filter)
	if err != nil {
		s.Logger.Errorw("failed to list overdue invoices",
			"account_id", accountID,
			"error", err,
		)
		s.Sentry.CaptureExceptionWithTags(err, map[string]string{"account_id": accountID})
		summary.Errors++
		return
	}

	for _, inv := range invoices {
		summary.Invoices++

		var catcher panics.Catcher
		catcher.Try(func() {
			err = s.reconcileInvoice(ctx, inv, summary)
		})
		if recovered := catcher.Recovered(); recovered != nil {
			err = ierr.WithError(recovered.AsError()).
				WithMessagef("panic while reconciling invoice %s", inv.ID).
				Mark(ierr.ErrSystem)
		}
		if err == nil {
			continue
		}

		s.Logger.Errorw("failed to reconcile invoice",
			"account_id", accountID,
			"invoice_id", inv.ID,
			"error", err,
		)
		s.Sentry.CaptureExceptionWithTags(err, map[string]string{
			"account_id": accountID,
			"invoice_id": inv.ID,
		})
		summary.Errors++
	}
}

func (s *reminderReconciliation) reconcileInvoice(ctx context.Context, inv *invoice.Invoice, summary *dto.ReconciliationSummary) error {
	ctx = types.SetAccountID(ctx, inv.AccountID)

	kinds, err := s.scheduler.DueKinds(ctx, inv, s.now())
	if err != nil {
		return err
	}
	summary.Found += len(kinds)

	for _, kind := range kinds {
		resp, err := s.dispatcher.Dispatch(ctx, inv.ID, kind, DispatchOptions{Batch: true})
		if err != nil {
			return ierr.WithError(err).
				WithMessagef("dispatch %s reminder", kind).
				Mark(ierr.ErrSystem)
		}
		summary.Add(resp.Result)

		// a cancelled dispatch means the invoice is no longer open, later kinds would be cancelled too
		if resp.Result == types.ReminderDispatchCancelled {
			break
		}
	}
	return nil
}
