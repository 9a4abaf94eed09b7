package service

import (
	"context"
	"testing"

	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/notification"
	"github.com/flexprice/dunning/internal/testutil"
	"github.com/flexprice/dunning/internal/types"
	"github.com/stretchr/testify/suite"
)

type ReminderReconciliationSuite struct {
	testutil.BaseServiceTestSuite
	params ServiceParams
	run    ReminderReconciliation
}

func TestReminderReconciliation(t *testing.T) {
	suite.Run(t, new(ReminderReconciliationSuite))
}

func (s *ReminderReconciliationSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestServiceParams(&s.BaseServiceTestSuite)
	s.run = s.build(s.params)
}

func (s *ReminderReconciliationSuite) build(params ServiceParams) ReminderReconciliation {
	return NewReminderReconciliation(params, NewReminderScheduler(params), NewReminderDispatcher(params))
}

// seed creates two accounts with a mix of due, not yet due and excluded invoices.
// Three reminders are due across two invoices.
func (s *ReminderReconciliationSuite) seed() (tenDays, twoDays *invoice.Invoice) {
	now := s.GetNow()
	a := s.CreateAccount(types.PlanTierStarter)
	b := s.CreateAccount(types.PlanTierBusiness)

	tenDays = s.CreateInvoice(a.ID, dec("500"), now.AddDate(0, 0, -10))
	s.CreateInvoice(a.ID, dec("80"), now.AddDate(0, 0, 1))
	s.CreateInvoice(a.ID, dec("80"), now.AddDate(0, 0, -20), testutil.WithStatus(types.InvoiceStatusDraft))
	s.CreateInvoice(b.ID, dec("900"), now.AddDate(0, 0, -35), testutil.WithReminderPolicy(&invoice.ReminderPolicy{}))
	twoDays = s.CreateInvoice(b.ID, dec("40"), now.AddDate(0, 0, -2))
	return tenDays, twoDays
}

func (s *ReminderReconciliationSuite) TestRun_DispatchesEveryDueReminder() {
	tenDays, twoDays := s.seed()

	summary := s.run.Run(s.GetContext())

	s.Equal(2, summary.Invoices)
	s.Equal(3, summary.Found)
	s.Equal(3, summary.Sent)
	s.Zero(summary.Failed)
	s.Zero(summary.Errors)
	s.False(summary.EndedAt.Before(summary.StartedAt))

	s.Len(s.GetSender().Sent(), 3)
	s.Len(s.GetPublisher().EventsNamed(types.AuditReminderSent), 3)

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), tenDays.ID)
	s.Require().NoError(err)
	s.Equal(2, inv.ReminderCount)

	inv, err = s.GetStores().InvoiceRepo.Get(s.GetContext(), twoDays.ID)
	s.Require().NoError(err)
	s.Equal(1, inv.ReminderCount)
}

func (s *ReminderReconciliationSuite) TestRun_IsSafeToRepeat() {
	s.seed()

	first := s.run.Run(s.GetContext())
	s.Require().Equal(3, first.Sent)

	second := s.run.Run(s.GetContext())
	s.Zero(second.Found)
	s.Zero(second.Sent)
	s.Len(s.GetSender().Sent(), 3)

	// the next threshold is picked up once crossed
	s.GetClock().AdvanceDays(5)
	third := s.run.Run(s.GetContext())
	s.Equal(2, third.Found)
	s.Equal(2, third.Sent)
}

func (s *ReminderReconciliationSuite) TestRun_SendFailuresAreCounted() {
	tenDays, _ := s.seed()
	s.GetSender().FailNext(notification.NewSendError(types.ReminderFailureRateLimited, context.Canceled))

	summary := s.run.Run(s.GetContext())
	s.Equal(3, summary.Found)
	s.Equal(2, summary.Sent)
	s.Equal(1, summary.Failed)
	s.Zero(summary.Errors)

	// the failed occasion is retried on the next run
	retry := s.run.Run(s.GetContext())
	s.Equal(1, retry.Found)
	s.Equal(1, retry.Sent)

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), tenDays.ID)
	s.Require().NoError(err)
	s.Equal(2, inv.ReminderCount)
}

func (s *ReminderReconciliationSuite) TestRun_InvoiceErrorsDoNotStopTheRun() {
	tenDays, _ := s.seed()
	s.GetSender().OnSend = func(_ context.Context, msg notification.Message) {
		if msg.Tags["invoice_id"] == tenDays.ID {
			panic("template store unavailable")
		}
	}

	summary := s.run.Run(s.GetContext())
	s.Equal(2, summary.Invoices)
	s.Equal(1, summary.Errors)
	s.Equal(1, summary.Sent)
}

func (s *ReminderReconciliationSuite) TestRun_Disabled() {
	s.seed()

	cfg := *s.GetConfig()
	cfg.Reminder.Enabled = false
	params := s.params
	params.Config = &cfg

	summary := s.build(params).Run(s.GetContext())
	s.Zero(summary.Invoices)
	s.Zero(summary.Found)
	s.Empty(s.GetSender().Sent())
}

func (s *ReminderReconciliationSuite) TestRun_NoAccounts() {
	summary := s.run.Run(s.GetContext())
	s.Zero(summary.Invoices)
	s.Zero(summary.Errors)
}
