package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/flexprice/dunning/internal/api/dto"
	"github.com/flexprice/dunning/internal/domain/account"
	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/domain/latefee"
	"github.com/flexprice/dunning/internal/domain/payment"
	"github.com/flexprice/dunning/internal/domain/reminder"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/notification"
	"github.com/flexprice/dunning/internal/quota"
	"github.com/flexprice/dunning/internal/testutil"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type ReminderDispatcherSuite struct {
	testutil.BaseServiceTestSuite
	dispatcher ReminderDispatcher
	account    *account.Account
	invoice    *invoice.Invoice
}

func TestReminderDispatcher(t *testing.T) {
	suite.Run(t, new(ReminderDispatcherSuite))
}

func (s *ReminderDispatcherSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.dispatcher = NewReminderDispatcher(newTestServiceParams(&s.BaseServiceTestSuite))
	s.account = s.CreateAccount(types.PlanTierStarter)
	s.invoice = s.CreateInvoice(s.account.ID, dec("1000"), s.GetNow().AddDate(0, 0, -10),
		testutil.WithLateFee(&latefee.Policy{
			Enabled:         true,
			FeeType:         types.LateFeeTypePercentage,
			Amount:          dec("5"),
			GracePeriodDays: 3,
		}),
	)
}

func (s *ReminderDispatcherSuite) dispatch(kind types.ReminderKind, opts DispatchOptions) *dto.DispatchResponse {
	resp, err := s.dispatcher.Dispatch(s.GetContext(), s.invoice.ID, kind, opts)
	s.Require().NoError(err)
	s.Require().NotNil(resp)
	return resp
}

func (s *ReminderDispatcherSuite) reloadInvoice() *invoice.Invoice {
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.invoice.ID)
	s.Require().NoError(err)
	return inv
}

func (s *ReminderDispatcherSuite) recordsOf(kind types.ReminderKind) []types.ReminderStatus {
	records, err := s.GetStores().ReminderRepo.List(s.GetContext(), &types.ReminderRecordFilter{
		InvoiceID: s.invoice.ID,
		Kinds:     []types.ReminderKind{kind},
	})
	s.Require().NoError(err)
	out := make([]types.ReminderStatus, 0, len(records))
	for _, r := range records {
		out = append(out, r.ReminderStatus)
	}
	return out
}

func (s *ReminderDispatcherSuite) TestDispatch_Sent() {
	resp := s.dispatch(types.ReminderKindFriendly, DispatchOptions{})

	s.Equal(types.ReminderDispatchSent, resp.Result)
	s.Equal("msg_1", resp.MessageID)
	s.NotEmpty(resp.RecordID)

	rec, err := s.GetStores().ReminderRepo.Get(s.GetContext(), resp.RecordID)
	s.Require().NoError(err)
	s.Equal(types.ReminderStatusSent, rec.ReminderStatus)
	s.Equal(1, rec.Attempts)
	s.Equal(10, rec.OverdueDays)
	s.False(rec.Manual)
	s.Equal("msg_1", lo.FromPtr(rec.ExternalMessageID))

	inv := s.reloadInvoice()
	s.Equal(1, inv.ReminderCount)
	s.NotNil(inv.LastReminderSentAt)
	s.Equal(1, s.GetQuota().Recorded(s.account.ID))

	sent := s.GetSender().Sent()
	s.Require().Len(sent, 1)
	msg := sent[0]
	s.Equal("jane@customer.test", msg.To)
	s.Equal("billing@example.com", msg.From)
	s.Contains(msg.Subject, s.invoice.InvoiceNumber)
	s.Contains(msg.Text, "Outstanding balance: $1000.00")
	s.Contains(msg.Text, "Late fee: $50.00")
	s.Contains(msg.Text, "Total payable: $1050.00")
	s.NotEmpty(msg.IdempotencyKey)

	s.True(s.GetPublisher().HasEvent(types.AuditReminderSent, s.invoice.ID))
}

func (s *ReminderDispatcherSuite) TestDispatch_SecondCallIsSkipped() {
	first := s.dispatch(types.ReminderKindFriendly, DispatchOptions{})
	s.Require().Equal(types.ReminderDispatchSent, first.Result)

	second := s.dispatch(types.ReminderKindFriendly, DispatchOptions{Manual: true})
	s.Equal(types.ReminderDispatchSkipped, second.Result)
	s.Equal(first.RecordID, second.RecordID)

	s.Len(s.GetSender().Sent(), 1)
	s.Equal(1, s.reloadInvoice().ReminderCount)
}

func (s *ReminderDispatcherSuite) TestDispatch_FailureThenRetryReusesRecord() {
	s.GetSender().FailNext(notification.NewSendError(types.ReminderFailureTransport, errors.New("connection reset")))

	failed := s.dispatch(types.ReminderKindFriendly, DispatchOptions{})
	s.Equal(types.ReminderDispatchFailed, failed.Result)
	s.Equal(types.ReminderFailureTransport, failed.FailureReason)
	s.Equal(0, s.reloadInvoice().ReminderCount)
	s.True(s.GetPublisher().HasEvent(types.AuditReminderFailed, s.invoice.ID))

	retried := s.dispatch(types.ReminderKindFriendly, DispatchOptions{})
	s.Equal(types.ReminderDispatchSent, retried.Result)
	s.Equal(failed.RecordID, retried.RecordID)

	rec, err := s.GetStores().ReminderRepo.Get(s.GetContext(), retried.RecordID)
	s.Require().NoError(err)
	s.Equal(2, rec.Attempts)
	s.Nil(rec.FailureReason)
	s.Equal([]types.ReminderStatus{types.ReminderStatusSent}, s.recordsOf(types.ReminderKindFriendly))
}

func (s *ReminderDispatcherSuite) TestDispatch_TimeoutIsCategorised() {
	s.GetSender().FailNext(context.DeadlineExceeded)

	resp := s.dispatch(types.ReminderKindPolite, DispatchOptions{})
	s.Equal(types.ReminderDispatchFailed, resp.Result)
	s.Equal(types.ReminderFailureTimeout, resp.FailureReason)
}

func (s *ReminderDispatcherSuite) TestDispatch_QuotaDenied() {
	s.GetQuota().Queue(quota.Deny(quota.LimitTypePerInvoice, "invoice reminder limit reached"))

	resp := s.dispatch(types.ReminderKindFriendly, DispatchOptions{})
	s.Equal(types.ReminderDispatchFailed, resp.Result)
	s.Equal(types.ReminderFailureQuotaExceeded, resp.FailureReason)
	s.Equal("invoice reminder limit reached", resp.Detail)
	s.Empty(s.GetSender().Sent())
	s.Equal(0, s.GetQuota().Recorded(s.account.ID))
}

func (s *ReminderDispatcherSuite) TestDispatch_PostSendQuotaVeto() {
	s.GetQuota().Queue(quota.Allow(), quota.Deny(quota.LimitTypePerPeriod, "monthly reminder limit reached"))

	resp := s.dispatch(types.ReminderKindFriendly, DispatchOptions{})
	s.Equal(types.ReminderDispatchVetoed, resp.Result)
	s.Equal("msg_1", resp.MessageID)
	s.Equal(types.ReminderCancelRaceVeto, resp.FailureReason)

	inv := s.reloadInvoice()
	s.Equal(0, inv.ReminderCount)
	s.Equal(0, s.GetQuota().Recorded(s.account.ID))
	s.True(s.GetPublisher().HasEvent(types.AuditReminderCancelled, s.invoice.ID))

	// delivered, so never sent again
	again := s.dispatch(types.ReminderKindFriendly, DispatchOptions{})
	s.Equal(types.ReminderDispatchSkipped, again.Result)
	s.Len(s.GetSender().Sent(), 1)
}

func (s *ReminderDispatcherSuite) TestDispatch_AbortsWhenSettledConcurrently() {
	// a payment recorded without going through the ledger service
	p := &payment.Payment{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:   s.invoice.ID,
		Amount:      dec("1000"),
		Currency:    "usd",
		PaymentDate: s.GetNow(),
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), p))

	resp := s.dispatch(types.ReminderKindFriendly, DispatchOptions{})
	s.Equal(types.ReminderDispatchCancelled, resp.Result)
	s.Equal(string(types.ReminderCancelInvoiceSettled), resp.Detail)
	s.Empty(s.GetSender().Sent())

	inv := s.reloadInvoice()
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.Equal(types.PaidSourceLedger, lo.FromPtr(inv.PaidSource))
}

func (s *ReminderDispatcherSuite) TestDispatch_PaidInvoiceCancelsScheduled() {
	// a scheduled record left behind by an interrupted attempt
	stale := &reminder.Record{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REMINDER),
		InvoiceID:      s.invoice.ID,
		AccountID:      s.account.ID,
		Kind:           types.ReminderKindFriendly,
		ReminderStatus: types.ReminderStatusScheduled,
		Attempts:       1,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().ReminderRepo.Create(s.GetContext(), stale))

	inv := s.reloadInvoice()
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.PaidSource = lo.ToPtr(types.PaidSourceManual)
	s.Require().NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	resp := s.dispatch(types.ReminderKindPolite, DispatchOptions{})
	s.Equal(types.ReminderDispatchCancelled, resp.Result)
	s.Equal(string(types.ReminderCancelInvoicePaid), resp.Detail)
	s.Empty(s.GetSender().Sent())

	rec, err := s.GetStores().ReminderRepo.Get(s.GetContext(), stale.ID)
	s.Require().NoError(err)
	s.Equal(types.ReminderStatusCancelled, rec.ReminderStatus)
	s.Equal(types.ReminderCancelInvoicePaid, lo.FromPtr(rec.FailureReason))
	s.True(s.GetPublisher().HasEvent(types.AuditReminderCancelled, s.invoice.ID))
}

func (s *ReminderDispatcherSuite) TestDispatch_Rejections() {
	s.Run("draft invoice", func() {
		draft := s.CreateInvoice(s.account.ID, dec("10"), s.GetNow().AddDate(0, 0, -5),
			testutil.WithStatus(types.InvoiceStatusDraft))
		_, err := s.dispatcher.Dispatch(s.GetContext(), draft.ID, types.ReminderKindFriendly, DispatchOptions{})
		s.Error(err)
		s.True(ierr.IsInvalidOperation(err))
	})

	s.Run("unknown kind", func() {
		_, err := s.dispatcher.Dispatch(s.GetContext(), s.invoice.ID, types.ReminderKind("LOUD"), DispatchOptions{})
		s.True(ierr.IsValidation(err))
	})

	s.Run("other account", func() {
		ctx := types.SetAccountID(s.GetContext(), "acct_other")
		_, err := s.dispatcher.Dispatch(ctx, s.invoice.ID, types.ReminderKindFriendly, DispatchOptions{})
		s.True(ierr.IsNotFound(err))
	})

	s.Run("suspended account", func() {
		acct, err := s.GetStores().AccountRepo.Get(s.GetContext(), s.account.ID)
		s.Require().NoError(err)
		acct.AccountStatus = types.AccountStatusSuspended
		s.Require().NoError(s.GetStores().AccountRepo.Update(s.GetContext(), acct))

		_, err = s.dispatcher.Dispatch(s.GetContext(), s.invoice.ID, types.ReminderKindFriendly, DispatchOptions{})
		s.True(ierr.IsInvalidOperation(err))
	})

	s.Empty(s.GetSender().Sent())
}

func (s *ReminderDispatcherSuite) TestDispatch_ManualBypassesPolicy() {
	inv := s.reloadInvoice()
	inv.ReminderPolicy = &invoice.ReminderPolicy{Enabled: false}
	s.Require().NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	skipped := s.dispatch(types.ReminderKindFirm, DispatchOptions{})
	s.Equal(types.ReminderDispatchSkipped, skipped.Result)

	sent := s.dispatch(types.ReminderKindFirm, DispatchOptions{Manual: true})
	s.Equal(types.ReminderDispatchSent, sent.Result)

	rec, err := s.GetStores().ReminderRepo.Get(s.GetContext(), sent.RecordID)
	s.Require().NoError(err)
	s.True(rec.Manual)
}

func (s *ReminderDispatcherSuite) TestDispatch_AccountSenderOverride() {
	acct, err := s.GetStores().AccountRepo.Get(s.GetContext(), s.account.ID)
	s.Require().NoError(err)
	acct.ReminderFromAddress = lo.ToPtr("ar@acme.test")
	s.Require().NoError(s.GetStores().AccountRepo.Update(s.GetContext(), acct))

	s.dispatch(types.ReminderKindFriendly, DispatchOptions{})

	sent := s.GetSender().Sent()
	s.Require().Len(sent, 1)
	s.Equal("ar@acme.test", sent[0].From)
	s.Equal("billing@example.com", sent[0].ReplyTo)
}

func (s *ReminderDispatcherSuite) TestDispatch_ConcurrentSameKindSendsOnce() {
	const workers = 4

	var wg sync.WaitGroup
	results := make([]types.ReminderDispatchResult, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := s.dispatcher.Dispatch(s.GetContext(), s.invoice.ID, types.ReminderKindUrgent, DispatchOptions{Manual: true})
			if err == nil {
				results[i] = resp.Result
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, lo.Count(results, types.ReminderDispatchSent))
	s.Equal([]types.ReminderStatus{types.ReminderStatusSent}, s.recordsOf(types.ReminderKindUrgent))
	s.Equal(1, s.reloadInvoice().ReminderCount)
	s.Equal(1, s.GetQuota().Recorded(s.account.ID))
}

func (s *ReminderDispatcherSuite) TestListReminderHistory_NewestFirst() {
	first := s.dispatch(types.ReminderKindFriendly, DispatchOptions{})
	s.GetClock().Advance(time.Hour)
	second := s.dispatch(types.ReminderKindPolite, DispatchOptions{})

	resp, err := s.dispatcher.ListReminderHistory(s.GetContext(), s.invoice.ID)
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 2)
	s.Equal(second.RecordID, resp.Items[0].ID)
	s.Equal(first.RecordID, resp.Items[1].ID)
	s.Equal(2, resp.Pagination.Total)
}

func (s *ReminderDispatcherSuite) TestDispatch_SettledDuringSendKeepsDelivery() {
	ledger := NewLedgerService(newTestServiceParams(&s.BaseServiceTestSuite))

	var paymentID string
	sender := s.GetSender()
	sender.OnSend = func(ctx context.Context, msg notification.Message) {
		sender.OnSend = nil
		p, err := ledger.AddPayment(s.GetContext(), s.invoice.ID, dto.AddPaymentRequest{Amount: dec("1050")})
		s.Require().NoError(err)
		paymentID = p.ID
	}

	first := s.dispatch(types.ReminderKindFriendly, DispatchOptions{})
	s.Equal(types.ReminderDispatchCancelled, first.Result)
	s.Equal("msg_1", first.MessageID)
	s.Require().Len(sender.Sent(), 1)

	rec, err := s.GetStores().ReminderRepo.Get(s.GetContext(), first.RecordID)
	s.Require().NoError(err)
	s.Equal(types.ReminderStatusCancelled, rec.ReminderStatus)
	s.Equal(types.ReminderCancelInvoicePaid, lo.FromPtr(rec.FailureReason))
	s.Equal("msg_1", lo.FromPtr(rec.ExternalMessageID))
	s.NotNil(rec.SentAt)
	s.True(rec.Delivered())

	// not counted against the paid invoice
	s.Equal(0, s.reloadInvoice().ReminderCount)

	// reverting the payment reopens the invoice, the delivered kind must not fire again
	s.Require().NoError(ledger.RemovePayment(s.GetContext(), s.invoice.ID, paymentID))
	s.Require().Equal(types.InvoiceStatusSent, s.reloadInvoice().InvoiceStatus)

	again := s.dispatch(types.ReminderKindFriendly, DispatchOptions{})
	s.Equal(types.ReminderDispatchSkipped, again.Result)
	s.Equal(first.RecordID, again.RecordID)
	s.Len(sender.Sent(), 1)
}

func (s *ReminderDispatcherSuite) TestDispatch_BatchSendsAreThrottled() {
	const interval = 100 * time.Millisecond

	cfg := *s.GetConfig()
	cfg.Reminder.SendInterval = interval
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	params.Config = &cfg
	dispatcher := NewReminderDispatcher(params)

	var (
		mu      sync.Mutex
		sentAt  []time.Time
		started = time.Now()
	)
	s.GetSender().OnSend = func(ctx context.Context, msg notification.Message) {
		mu.Lock()
		defer mu.Unlock()
		sentAt = append(sentAt, time.Now())
	}

	for _, kind := range []types.ReminderKind{types.ReminderKindFriendly, types.ReminderKindPolite} {
		resp, err := dispatcher.Dispatch(s.GetContext(), s.invoice.ID, kind, DispatchOptions{Batch: true})
		s.Require().NoError(err)
		s.Require().Equal(types.ReminderDispatchSent, resp.Result, resp.Detail)
	}

	s.Require().Len(sentAt, 2)
	// the first token is spent before the first send, the second waits a full interval
	s.GreaterOrEqual(sentAt[1].Sub(started), interval)
	s.Greater(sentAt[1].Sub(sentAt[0]), interval/2)

	// interactive sends skip the limiter even though it has no token left
	interactive := time.Now()
	for _, kind := range []types.ReminderKind{types.ReminderKindFirm, types.ReminderKindUrgent} {
		resp, err := dispatcher.Dispatch(s.GetContext(), s.invoice.ID, kind, DispatchOptions{Manual: true})
		s.Require().NoError(err)
		s.Require().Equal(types.ReminderDispatchSent, resp.Result, resp.Detail)
	}
	s.Less(time.Since(interactive), interval)
	s.Len(s.GetSender().Sent(), 4)
}
