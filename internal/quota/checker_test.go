package quota_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/flexprice/dunning/internal/cache"
	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/domain/account"
	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/quota"
	"github.com/flexprice/dunning/internal/testutil"
	"github.com/flexprice/dunning/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PlanCheckerSuite struct {
	suite.Suite
	ctx      context.Context
	cfg      *config.Configuration
	redis    *miniredis.Miniredis
	accounts *testutil.InMemoryAccountStore
	invoices *testutil.InMemoryInvoiceStore
	checker  *quota.PlanChecker
	now      time.Time
}

func TestPlanChecker(t *testing.T) {
	suite.Run(t, new(PlanCheckerSuite))
}

func (s *PlanCheckerSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.now = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	s.redis = miniredis.RunT(s.T())

	s.cfg = config.GetDefaultConfig()
	s.cfg.Cache.Enabled = false
	s.cfg.Redis.KeyPrefix = "test"

	client := redis.NewClient(&redis.Options{Addr: s.redis.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	s.accounts = testutil.NewInMemoryAccountStore()
	s.invoices = testutil.NewInMemoryInvoiceStore()
	s.checker = quota.NewPlanChecker(
		s.cfg,
		s.accounts,
		s.invoices,
		quota.NewUsageCounter(client, s.cfg),
		cache.NewInMemoryCache(s.cfg),
		logger.NewNoopLogger(),
	).WithClock(func() time.Time { return s.now })
}

func (s *PlanCheckerSuite) account(plan types.PlanTier) *account.Account {
	a := &account.Account{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ACCOUNT),
		Name:          "Acme",
		Plan:          plan,
		AccountStatus: types.AccountStatusActive,
		BaseModel:     types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(s.accounts.Create(s.ctx, a))
	return a
}

func (s *PlanCheckerSuite) invoice(accountID string, reminders int) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		AccountID:     accountID,
		Currency:      "usd",
		Total:         decimal.NewFromInt(100),
		DueDate:       s.now.AddDate(0, 0, -10),
		InvoiceStatus: types.InvoiceStatusSent,
		BaseModel:     types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(s.invoices.Create(s.ctx, inv))
	for i := 0; i < reminders; i++ {
		s.Require().NoError(s.invoices.IncrementReminderCount(s.ctx, inv.ID, s.now))
	}
	return inv
}

func (s *PlanCheckerSuite) check(accountID, invoiceID string) quota.Decision {
	d, err := s.checker.CanSendReminder(s.ctx, accountID, invoiceID)
	s.Require().NoError(err)
	return d
}

func (s *PlanCheckerSuite) TestPerInvoiceLimit() {
	acct := s.account(types.PlanTierFree)

	s.True(s.check(acct.ID, s.invoice(acct.ID, 1).ID).Allowed)

	d := s.check(acct.ID, s.invoice(acct.ID, 2).ID)
	s.False(d.Allowed)
	s.Equal(quota.LimitTypePerInvoice, d.LimitType)
	s.Contains(d.Reason, "2 reminders per invoice")

	// an account level check ignores invoice counts
	s.True(s.check(acct.ID, "").Allowed)
}

func (s *PlanCheckerSuite) TestPerPeriodLimit() {
	acct := s.account(types.PlanTierFree)
	inv := s.invoice(acct.ID, 0)

	for i := 0; i < 19; i++ {
		s.Require().NoError(s.checker.RecordReminderSent(s.ctx, acct.ID, s.now))
	}
	s.True(s.check(acct.ID, inv.ID).Allowed)

	s.Require().NoError(s.checker.RecordReminderSent(s.ctx, acct.ID, s.now))
	d := s.check(acct.ID, inv.ID)
	s.False(d.Allowed)
	s.Equal(quota.LimitTypePerPeriod, d.LimitType)

	// a new month starts a new allowance
	s.now = s.now.AddDate(0, 1, 0)
	s.True(s.check(acct.ID, inv.ID).Allowed)
}

func (s *PlanCheckerSuite) TestUsageIsStoredInRedisWithExpiry() {
	acct := s.account(types.PlanTierStarter)
	s.Require().NoError(s.checker.RecordReminderSent(s.ctx, acct.ID, s.now))
	s.Require().NoError(s.checker.RecordReminderSent(s.ctx, acct.ID, s.now))

	key := "test:quota:" + acct.ID + ":2025-03"
	val, err := s.redis.Get(key)
	s.Require().NoError(err)
	s.Equal("2", val)
	s.Greater(int64(s.redis.TTL(key)), int64(0))
}

func (s *PlanCheckerSuite) TestUnlimitedPlan() {
	acct := s.account(types.PlanTierBusiness)
	inv := s.invoice(acct.ID, 50)
	for i := 0; i < 30; i++ {
		s.Require().NoError(s.checker.RecordReminderSent(s.ctx, acct.ID, s.now))
	}
	s.True(s.check(acct.ID, inv.ID).Allowed)
}

func (s *PlanCheckerSuite) TestInactiveAccountIsDenied() {
	acct := s.account(types.PlanTierBusiness)
	acct.AccountStatus = types.AccountStatusSuspended
	s.Require().NoError(s.accounts.Update(s.ctx, acct))

	d := s.check(acct.ID, "")
	s.False(d.Allowed)
	s.Equal(quota.LimitTypeAccount, d.LimitType)
}

func (s *PlanCheckerSuite) TestRedisUnavailable() {
	acct := s.account(types.PlanTierFree)
	s.redis.SetError("LOADING redis is loading the dataset in memory")

	_, err := s.checker.CanSendReminder(s.ctx, acct.ID, "")
	s.Error(err)
	s.Error(s.checker.RecordReminderSent(s.ctx, acct.ID, s.now))
}

func TestMemoryUsageCounter(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Quota.Period = quota.PeriodDaily
	counter := quota.NewMemoryUsageCounter(cfg)
	ctx := context.Background()
	day := time.Date(2025, time.March, 15, 23, 0, 0, 0, time.UTC)

	n, err := counter.Increment(ctx, "acct_1", day)
	if err != nil || n != 1 {
		t.Fatalf("first increment = %d, %v", n, err)
	}
	n, _ = counter.Increment(ctx, "acct_1", day)
	if n != 2 {
		t.Fatalf("second increment = %d", n)
	}

	used, _ := counter.Usage(ctx, "acct_1", day.Add(2*time.Hour))
	if used != 0 {
		t.Fatalf("usage on the next day = %d, want 0", used)
	}
	used, _ = counter.Usage(ctx, "acct_2", day)
	if used != 0 {
		t.Fatalf("usage of another account = %d, want 0", used)
	}
}
