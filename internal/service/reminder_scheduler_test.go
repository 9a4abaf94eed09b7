package service

import (
	"testing"

	"github.com/flexprice/dunning/internal/domain/account"
	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/domain/payment"
	"github.com/flexprice/dunning/internal/domain/reminder"
	"github.com/flexprice/dunning/internal/testutil"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type ReminderSchedulerSuite struct {
	testutil.BaseServiceTestSuite
	scheduler ReminderScheduler
	account   *account.Account
}

func TestReminderScheduler(t *testing.T) {
	suite.Run(t, new(ReminderSchedulerSuite))
}

func (s *ReminderSchedulerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.scheduler = NewReminderScheduler(newTestServiceParams(&s.BaseServiceTestSuite))
	s.account = s.CreateAccount(types.PlanTierStarter)
}

func (s *ReminderSchedulerSuite) overdue(days int, opts ...testutil.InvoiceOption) *invoice.Invoice {
	return s.CreateInvoice(s.account.ID, dec("100"), s.GetNow().AddDate(0, 0, -days), opts...)
}

func (s *ReminderSchedulerSuite) record(inv *invoice.Invoice, kind types.ReminderKind, status types.ReminderStatus, mutate ...func(r *reminder.Record)) {
	rec := &reminder.Record{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REMINDER),
		InvoiceID:      inv.ID,
		AccountID:      inv.AccountID,
		Kind:           kind,
		ReminderStatus: status,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	for _, m := range mutate {
		m(rec)
	}
	s.Require().NoError(s.GetStores().ReminderRepo.Create(s.GetContext(), rec))
}

func (s *ReminderSchedulerSuite) due(inv *invoice.Invoice) []types.ReminderKind {
	kinds, err := s.scheduler.DueKinds(s.GetContext(), inv, s.GetNow())
	s.Require().NoError(err)
	return kinds
}

func (s *ReminderSchedulerSuite) TestThresholdsInAscendingSeverity() {
	tests := []struct {
		name     string
		days     int
		expected []types.ReminderKind
	}{
		{name: "due today", days: 0, expected: []types.ReminderKind{}},
		{name: "one day", days: 1, expected: []types.ReminderKind{types.ReminderKindFriendly}},
		{name: "ten days", days: 10, expected: []types.ReminderKind{types.ReminderKindFriendly, types.ReminderKindPolite}},
		{name: "thirty days", days: 30, expected: types.ReminderKinds},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.ElementsMatch(tt.expected, s.due(s.overdue(tt.days)))
		})
	}
}

func (s *ReminderSchedulerSuite) TestDeliveredKindsNeverRefire() {
	inv := s.overdue(15)
	s.record(inv, types.ReminderKindFriendly, types.ReminderStatusSent, func(r *reminder.Record) {
		r.ExternalMessageID = lo.ToPtr("msg_1")
	})
	// vetoed: cancelled but delivered
	s.record(inv, types.ReminderKindPolite, types.ReminderStatusCancelled, func(r *reminder.Record) {
		r.ExternalMessageID = lo.ToPtr("msg_2")
		r.FailureReason = lo.ToPtr(types.ReminderCancelRaceVeto)
	})
	s.record(inv, types.ReminderKindFirm, types.ReminderStatusScheduled)

	s.Equal([]types.ReminderKind{types.ReminderKindFirm}, s.due(inv))
}

func (s *ReminderSchedulerSuite) TestPermanentFailuresAreNotRetried() {
	inv := s.overdue(10)
	s.record(inv, types.ReminderKindFriendly, types.ReminderStatusFailed, func(r *reminder.Record) {
		r.FailureReason = lo.ToPtr(types.ReminderFailureInvalidRecipient)
	})
	s.record(inv, types.ReminderKindPolite, types.ReminderStatusFailed, func(r *reminder.Record) {
		r.FailureReason = lo.ToPtr(types.ReminderFailureTransport)
	})

	s.Equal([]types.ReminderKind{types.ReminderKindPolite}, s.due(inv))
}

func (s *ReminderSchedulerSuite) TestClosedInvoicesHaveNothingDue() {
	for _, status := range []types.InvoiceStatus{
		types.InvoiceStatusDraft,
		types.InvoiceStatusPaid,
		types.InvoiceStatusCancelled,
	} {
		s.Run(string(status), func() {
			s.Empty(s.due(s.overdue(40, testutil.WithStatus(status))))
		})
	}
}

func (s *ReminderSchedulerSuite) TestDisabledPolicy() {
	s.Empty(s.due(s.overdue(40, testutil.WithReminderPolicy(nil))))
	s.Empty(s.due(s.overdue(40, testutil.WithReminderPolicy(&invoice.ReminderPolicy{Enabled: false}))))
}

func (s *ReminderSchedulerSuite) TestPolicyCadenceAndThresholdOverrides() {
	inv := s.overdue(3, testutil.WithReminderPolicy(&invoice.ReminderPolicy{
		Enabled: true,
		Kinds:   []types.ReminderKind{types.ReminderKindFirm, types.ReminderKindUrgent},
		Thresholds: map[types.ReminderKind]int{
			types.ReminderKindFirm: 2,
		},
	}))

	s.Equal([]types.ReminderKind{types.ReminderKindFirm}, s.due(inv))
}

func (s *ReminderSchedulerSuite) TestSettledInvoiceHasNothingDue() {
	inv := s.overdue(10)
	p := &payment.Payment{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:   inv.ID,
		Amount:      dec("100"),
		Currency:    "usd",
		PaymentDate: s.GetNow(),
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), p))

	s.Empty(s.due(inv))
}
