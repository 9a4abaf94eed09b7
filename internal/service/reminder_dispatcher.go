package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/dunning/internal/api/dto"
	"github.com/flexprice/dunning/internal/domain/account"
	"github.com/flexprice/dunning/internal/domain/events"
	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/domain/reminder"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/idempotency"
	"github.com/flexprice/dunning/internal/notification"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

// DispatchOptions tunes a single dispatch
type DispatchOptions struct {
	// Manual sends come from a user and skip the reminder policy, never the guards
	Manual bool
	// Batch serialises sends through the dispatcher's rate limiter
	Batch bool
}

// ReminderDispatcher sends one reminder occasion and records its outcome.
// Send failures are recorded on the reminder record and reported in the response, never returned as errors.
type ReminderDispatcher interface {
	Dispatch(ctx context.Context, invoiceID string, kind types.ReminderKind, opts DispatchOptions) (*dto.DispatchResponse, error)
	ListReminderHistory(ctx context.Context, invoiceID string) (*dto.ListReminderHistoryResponse, error)
}

type reminderDispatcher struct {
	ServiceParams
	resolver *statusResolver

	// sendMu and limiter keep batch sends strictly sequential with a minimum gap
	sendMu  sync.Mutex
	limiter *rate.Limiter
}

func NewReminderDispatcher(params ServiceParams) ReminderDispatcher {
	return &reminderDispatcher{
		ServiceParams: params,
		resolver:      &statusResolver{ServiceParams: params},
		limiter:       rate.NewLimiter(rate.Every(params.Config.Reminder.SendInterval), 1),
	}
}

// dispatchPlan carries the state prepared under the invoice lock into the send phase
type dispatchPlan struct {
	inv    *invoice.Invoice
	acct   *account.Account
	record *reminder.Record
	bal    *balance
	kind   types.ReminderKind
	manual bool
}

func (s *reminderDispatcher) Dispatch(ctx context.Context, invoiceID string, kind types.ReminderKind, opts DispatchOptions) (*dto.DispatchResponse, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	plan, resp, evs, err := s.prepare(ctx, invoiceID, kind, opts)
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, evs)

	if resp == nil {
		resp = s.deliver(ctx, plan, opts)
	}

	s.Metrics.ObserveDispatch(kind.String(), resp.Result.String())

	s.Logger.Infow("reminder dispatched",
		"invoice_id", invoiceID,
		"kind", kind,
		"result", resp.Result,
		"record_id", resp.RecordID,
		"manual", opts.Manual,
	)
	return resp, nil
}

// prepare runs the pre-flight guards under the invoice lock. It returns a response when the
// dispatch finished without a send, otherwise a plan whose record is persisted as SCHEDULED or FAILED.
func (s *reminderDispatcher) prepare(
	ctx context.Context,
	invoiceID string,
	kind types.ReminderKind,
	opts DispatchOptions,
) (*dispatchPlan, *dto.DispatchResponse, []*events.Event, error) {
	var (
		plan *dispatchPlan
		resp *dto.DispatchResponse
		evs  []*events.Event
	)

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		now := s.now()

		inv, err := s.getOwnedInvoice(ctx, invoiceID, true)
		if err != nil {
			return err
		}

		acct, err := s.AccountRepo.Get(ctx, inv.AccountID)
		if err != nil {
			return err
		}
		if !acct.IsActive() {
			return ierr.NewError("account is not active").
				WithHint("Reminders can not be sent for a suspended account").
				WithReportableDetails(map[string]any{
					"account_id": acct.ID,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		switch inv.InvoiceStatus {
		case types.InvoiceStatusDraft:
			return invoice.NewInvalidTransitionError(inv, "send a reminder for")
		case types.InvoiceStatusPaid, types.InvoiceStatusCancelled:
			reason := types.ReminderCancelInvoicePaid
			if inv.InvoiceStatus == types.InvoiceStatusCancelled {
				reason = types.ReminderCancelInvoiceCancelled
			}
			evs, err = s.resolver.cancelScheduled(ctx, inv, reason, now)
			if err != nil {
				return err
			}
			resp = s.finished(inv.ID, kind, types.ReminderDispatchCancelled, nil, string(reason))
			return nil
		}

		bal, err := s.loadBalance(ctx, inv, now)
		if err != nil {
			return err
		}

		// paid by a concurrent payment: abort before sending
		if bal.settled() {
			cancelled, err := s.resolver.cancelScheduled(ctx, inv, types.ReminderCancelInvoiceSettled, now)
			if err != nil {
				return err
			}
			resolved, err := s.resolver.resolve(ctx, inv, bal, now)
			if err != nil {
				return err
			}
			evs = append(cancelled, resolved...)
			resp = s.finished(inv.ID, kind, types.ReminderDispatchCancelled, nil, string(types.ReminderCancelInvoiceSettled))
			return nil
		}

		if !opts.Manual && !inv.ReminderPolicy.IsEnabled() {
			resp = s.finished(inv.ID, kind, types.ReminderDispatchSkipped, nil, "reminders disabled for invoice")
			return nil
		}

		records, err := s.ReminderRepo.List(ctx, &types.ReminderRecordFilter{
			InvoiceID: inv.ID,
			Kinds:     []types.ReminderKind{kind},
		})
		if err != nil {
			return err
		}

		if delivered := reminder.FindDelivered(records, kind); delivered != nil {
			resp = s.finished(inv.ID, kind, types.ReminderDispatchSkipped, delivered, "reminder already sent")
			return nil
		}

		decision, err := s.QuotaChecker.CanSendReminder(ctx, inv.AccountID, inv.ID)
		if err != nil {
			return err
		}

		rec, isNew := s.resolveRecord(ctx, inv, kind, records, opts, bal, now)

		if !decision.Allowed {
			if err := rec.MarkFailed(types.ReminderFailureQuotaExceeded, decision.Reason); err != nil {
				return err
			}
			if err := s.saveRecord(ctx, rec, isNew); err != nil {
				return err
			}
			evs = append(evs, s.failedEvent(ctx, inv, rec, now))
			resp = s.finished(inv.ID, kind, types.ReminderDispatchFailed, rec, decision.Reason)
			return nil
		}

		if err := s.saveRecord(ctx, rec, isNew); err != nil {
			return err
		}

		plan = &dispatchPlan{
			inv:    inv,
			acct:   acct,
			record: rec,
			bal:    bal,
			kind:   kind,
			manual: opts.Manual,
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return plan, resp, evs, nil
}

// resolveRecord picks the record this attempt updates so repeated attempts converge on one record
func (s *reminderDispatcher) resolveRecord(
	ctx context.Context,
	inv *invoice.Invoice,
	kind types.ReminderKind,
	records []*reminder.Record,
	opts DispatchOptions,
	bal *balance,
	now time.Time,
) (*reminder.Record, bool) {
	res := reminder.Resolve(records, kind)

	rec := res.Record
	isNew := res.Action == reminder.ResolutionCreateNew
	if isNew {
		base := types.GetDefaultBaseModel(ctx)
		base.CreatedAt = now
		rec = &reminder.Record{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REMINDER),
			InvoiceID:      inv.ID,
			AccountID:      inv.AccountID,
			Kind:           kind,
			ReminderStatus: types.ReminderStatusScheduled,
			BaseModel:      base,
		}
	}

	rec.Attempts++
	rec.Manual = opts.Manual
	rec.OverdueDays = bal.fee.DaysOverdue
	rec.Touch(ctx, now)

	s.Logger.Debugw("resolved reminder record",
		"invoice_id", inv.ID,
		"kind", kind,
		"record_id", rec.ID,
		"action", res.Action,
	)
	return rec, isNew
}

func (s *reminderDispatcher) saveRecord(ctx context.Context, rec *reminder.Record, isNew bool) error {
	if isNew {
		return s.ReminderRepo.Create(ctx, rec)
	}
	return s.ReminderRepo.Update(ctx, rec)
}

// deliver composes and sends the message, then records the outcome
func (s *reminderDispatcher) deliver(ctx context.Context, plan *dispatchPlan, opts DispatchOptions) *dto.DispatchResponse {
	msg, err := s.Composer.Compose(notification.ReminderContent{
		Kind:             plan.kind,
		Invoice:          plan.inv,
		Account:          plan.acct,
		DaysOverdue:      plan.bal.fee.DaysOverdue,
		RemainingBalance: plan.bal.remaining,
		LateFee:          plan.bal.fee.LateFee,
		TotalPayable:     plan.bal.fee.TotalPayable,
	})
	if err != nil {
		return s.recordFailure(ctx, plan, types.ReminderFailureProviderRejected, err)
	}

	msg.IdempotencyKey = idempotency.ReminderSendKey(plan.record.ID)

	messageID, err := s.send(ctx, msg, opts.Batch)
	if err != nil {
		return s.recordFailure(ctx, plan, notification.CategoryOf(err), err)
	}

	resp, err := s.persistOutcome(ctx, plan, messageID, s.now())
	if err != nil {
		s.Logger.Errorw("reminder delivered but outcome could not be recorded",
			"invoice_id", plan.inv.ID,
			"kind", plan.kind,
			"record_id", plan.record.ID,
			"message_id", messageID,
			"error", err,
		)
		s.Sentry.CaptureExceptionWithTags(err, map[string]string{
			"invoice_id": plan.inv.ID,
			"record_id":  plan.record.ID,
			"kind":       plan.kind.String(),
		})
		return &dto.DispatchResponse{
			InvoiceID: plan.inv.ID,
			Kind:      plan.kind,
			Result:    types.ReminderDispatchFailed,
			RecordID:  plan.record.ID,
			MessageID: messageID,
			Detail:    "message delivered but outcome not recorded",
		}
	}
	return resp
}

func (s *reminderDispatcher) send(ctx context.Context, msg notification.Message, batch bool) (string, error) {
	if batch {
		s.sendMu.Lock()
		defer s.sendMu.Unlock()

		if err := s.limiter.Wait(ctx); err != nil {
			return "", notification.NewSendError(types.ReminderFailureTimeout, err)
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.Config.Reminder.SendTimeout)
	defer cancel()

	start := time.Now()
	messageID, err := s.Sender.Send(sendCtx, msg)
	s.Metrics.ObserveSend(lo.Ternary(err == nil, "ok", "error"), time.Since(start))
	return messageID, err
}

// persistOutcome writes the final state of a delivered reminder. The quota is checked again
// under the invoice lock; a send that lost the race is cancelled and not counted.
func (s *reminderDispatcher) persistOutcome(ctx context.Context, plan *dispatchPlan, messageID string, at time.Time) (*dto.DispatchResponse, error) {
	var (
		resp     *dto.DispatchResponse
		evs      []*events.Event
		recorded bool
	)

	op := func() error {
		resp, evs, recorded = nil, nil, false

		err := s.DB.WithTx(ctx, func(ctx context.Context) error {
			inv, err := s.InvoiceRepo.GetForUpdate(ctx, plan.inv.ID)
			if err != nil {
				return err
			}

			rec, err := s.ReminderRepo.Get(ctx, plan.record.ID)
			if err != nil {
				return err
			}
			if rec.ReminderStatus.IsTerminal() {
				if rec.ReminderStatus != types.ReminderStatusCancelled || rec.ExternalMessageID != nil {
					resp = s.finished(inv.ID, plan.kind, types.ReminderDispatchSkipped, rec, "reminder already recorded")
					return nil
				}

				// cancelled while the message was in flight, the delivery is still recorded
				rec.Touch(ctx, at)
				if err := rec.RecordLateDelivery(messageID, at); err != nil {
					return err
				}
				if err := s.ReminderRepo.Update(ctx, rec); err != nil {
					return err
				}
				evs = append(evs, events.NewEvent(ctx, types.AuditReminderCancelled, inv.AccountID, inv.ID, at, map[string]interface{}{
					"record_id":  rec.ID,
					"kind":       rec.Kind,
					"reason":     lo.FromPtr(rec.FailureReason),
					"message_id": messageID,
				}))
				resp = s.finished(inv.ID, plan.kind, types.ReminderDispatchCancelled, rec, "message delivered after the reminder was cancelled")
				return nil
			}

			records, err := s.ReminderRepo.List(ctx, &types.ReminderRecordFilter{
				InvoiceID: inv.ID,
				Kinds:     []types.ReminderKind{plan.kind},
			})
			if err != nil {
				return err
			}

			veto := ""
			if other := reminder.FindDelivered(records, plan.kind); other != nil && other.ID != rec.ID {
				veto = fmt.Sprintf("kind already delivered by record %s", other.ID)
			} else {
				decision, err := s.QuotaChecker.CanSendReminder(ctx, inv.AccountID, inv.ID)
				if err != nil {
					return err
				}
				if !decision.Allowed {
					veto = decision.Reason
				}
			}

			rec.Touch(ctx, at)
			if veto != "" {
				if err := rec.MarkVetoed(messageID, at, veto); err != nil {
					return err
				}
				if err := s.ReminderRepo.Update(ctx, rec); err != nil {
					return err
				}
				evs = append(evs, events.NewEvent(ctx, types.AuditReminderCancelled, inv.AccountID, inv.ID, at, map[string]interface{}{
					"record_id":  rec.ID,
					"kind":       rec.Kind,
					"reason":     types.ReminderCancelRaceVeto,
					"message_id": messageID,
				}))
				resp = s.finished(inv.ID, plan.kind, types.ReminderDispatchVetoed, rec, veto)
				return nil
			}

			if err := rec.MarkSent(messageID, at); err != nil {
				return err
			}
			if err := s.ReminderRepo.Update(ctx, rec); err != nil {
				return err
			}
			if err := s.InvoiceRepo.IncrementReminderCount(ctx, inv.ID, at); err != nil {
				return err
			}

			evs = append(evs, events.NewEvent(ctx, types.AuditReminderSent, inv.AccountID, inv.ID, at, map[string]interface{}{
				"record_id":  rec.ID,
				"kind":       rec.Kind,
				"message_id": messageID,
				"manual":     plan.manual,
			}))
			resp = s.finished(inv.ID, plan.kind, types.ReminderDispatchSent, rec, "")
			recorded = true
			return nil
		})
		if err != nil && !ierr.Is(err, ierr.ErrDatabase) && !ierr.Is(err, ierr.ErrSystem) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.Config.Reminder.OutcomeMaxRetries),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}

	if recorded {
		if err := s.QuotaRecorder.RecordReminderSent(ctx, plan.inv.AccountID, at); err != nil {
			s.Logger.Warnw("failed to record reminder usage",
				"account_id", plan.inv.AccountID,
				"invoice_id", plan.inv.ID,
				"error", err,
			)
		}
	}
	s.publishEvents(ctx, evs)
	return resp, nil
}

// recordFailure marks the record FAILED unless a concurrent attempt already finished it
func (s *reminderDispatcher) recordFailure(ctx context.Context, plan *dispatchPlan, category types.ReminderFailureReason, cause error) *dto.DispatchResponse {
	var (
		resp *dto.DispatchResponse
		evs  []*events.Event
	)

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		evs = nil
		now := s.now()

		rec, err := s.ReminderRepo.Get(ctx, plan.record.ID)
		if err != nil {
			return err
		}
		if rec.ReminderStatus.IsTerminal() {
			resp = s.finished(plan.inv.ID, plan.kind, types.ReminderDispatchSkipped, rec, "reminder already recorded")
			return nil
		}

		if err := rec.MarkFailed(category, cause.Error()); err != nil {
			return err
		}
		rec.Touch(ctx, now)
		if err := s.ReminderRepo.Update(ctx, rec); err != nil {
			return err
		}

		evs = append(evs, s.failedEvent(ctx, plan.inv, rec, now))
		resp = s.finished(plan.inv.ID, plan.kind, types.ReminderDispatchFailed, rec, cause.Error())
		return nil
	})
	if err != nil {
		s.Logger.Errorw("failed to record reminder failure",
			"invoice_id", plan.inv.ID,
			"record_id", plan.record.ID,
			"category", category,
			"send_error", cause,
			"error", err,
		)
		s.Sentry.CaptureExceptionWithTags(err, map[string]string{
			"invoice_id": plan.inv.ID,
			"record_id":  plan.record.ID,
		})
		return &dto.DispatchResponse{
			InvoiceID:     plan.inv.ID,
			Kind:          plan.kind,
			Result:        types.ReminderDispatchFailed,
			RecordID:      plan.record.ID,
			FailureReason: category,
			Detail:        cause.Error(),
		}
	}

	s.Logger.Warnw("reminder send failed",
		"invoice_id", plan.inv.ID,
		"kind", plan.kind,
		"record_id", plan.record.ID,
		"category", category,
		"error", cause,
	)
	s.publishEvents(ctx, evs)
	return resp
}

func (s *reminderDispatcher) failedEvent(ctx context.Context, inv *invoice.Invoice, rec *reminder.Record, at time.Time) *events.Event {
	return events.NewEvent(ctx, types.AuditReminderFailed, inv.AccountID, inv.ID, at, map[string]interface{}{
		"record_id": rec.ID,
		"kind":      rec.Kind,
		"reason":    lo.FromPtr(rec.FailureReason),
		"attempts":  rec.Attempts,
	})
}

func (s *reminderDispatcher) finished(
	invoiceID string,
	kind types.ReminderKind,
	result types.ReminderDispatchResult,
	rec *reminder.Record,
	detail string,
) *dto.DispatchResponse {
	resp := &dto.DispatchResponse{
		InvoiceID: invoiceID,
		Kind:      kind,
		Result:    result,
		Detail:    detail,
	}
	if rec != nil {
		resp.RecordID = rec.ID
		resp.MessageID = lo.FromPtr(rec.ExternalMessageID)
		resp.FailureReason = lo.FromPtr(rec.FailureReason)
	}
	return resp
}

func (s *reminderDispatcher) ListReminderHistory(ctx context.Context, invoiceID string) (*dto.ListReminderHistoryResponse, error) {
	inv, err := s.getOwnedInvoice(ctx, invoiceID, false)
	if err != nil {
		return nil, err
	}

	records, err := s.ReminderRepo.List(ctx, &types.ReminderRecordFilter{InvoiceID: inv.ID})
	if err != nil {
		return nil, err
	}

	items := lo.Map(records, func(r *reminder.Record, _ int) *dto.ReminderRecordResponse {
		return &dto.ReminderRecordResponse{Record: r}
	})
	resp := types.NewListResponse(items, len(items), len(items), 0)
	return &resp, nil
}
