package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/flexprice/dunning/internal/cache"
	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/domain/account"
	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/types"
)

// PlanChecker enforces the per-invoice and per-period limits of the account's plan tier
type PlanChecker struct {
	cfg         config.QuotaConfig
	accountRepo account.Repository
	invoiceRepo invoice.Repository
	counter     UsageCounter
	cache       cache.Cache
	cacheTTL    time.Duration
	logger      *logger.Logger
	now         func() time.Time
}

var (
	_ Checker  = (*PlanChecker)(nil)
	_ Recorder = (*PlanChecker)(nil)
)

func NewPlanChecker(
	cfg *config.Configuration,
	accountRepo account.Repository,
	invoiceRepo invoice.Repository,
	counter UsageCounter,
	c cache.Cache,
	logger *logger.Logger,
) *PlanChecker {
	return &PlanChecker{
		cfg:         cfg.Quota,
		accountRepo: accountRepo,
		invoiceRepo: invoiceRepo,
		counter:     counter,
		cache:       c,
		cacheTTL:    cfg.Cache.TTL,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used to pick the usage period
func (c *PlanChecker) WithClock(now func() time.Time) *PlanChecker {
	c.now = now
	return c
}

// limitsFor returns the plan limits, falling back to the free tier for unknown plans
func (c *PlanChecker) limitsFor(plan types.PlanTier) config.PlanQuota {
	if limits, ok := c.cfg.Plans[plan]; ok {
		return limits
	}
	return c.cfg.Plans[types.PlanTierFree]
}

func (c *PlanChecker) getAccount(ctx context.Context, accountID string) (*account.Account, error) {
	return cache.GetOrLoad(ctx, c.cache, cache.AccountKey(accountID), c.cacheTTL,
		func(ctx context.Context) (*account.Account, error) {
			return c.accountRepo.Get(ctx, accountID)
		})
}

func (c *PlanChecker) CanSendReminder(ctx context.Context, accountID, invoiceID string) (Decision, error) {
	acct, err := c.getAccount(ctx, accountID)
	if err != nil {
		return Decision{}, err
	}
	if !acct.IsActive() {
		return Deny(LimitTypeAccount, "account is not active"), nil
	}

	limits := c.limitsFor(acct.Plan)

	if invoiceID != "" && limits.MaxPerInvoice > 0 {
		inv, err := c.invoiceRepo.Get(ctx, invoiceID)
		if err != nil {
			return Decision{}, err
		}
		if inv.ReminderCount >= limits.MaxPerInvoice {
			return Deny(LimitTypePerInvoice, fmt.Sprintf(
				"plan %s allows %d reminders per invoice", acct.Plan, limits.MaxPerInvoice)), nil
		}
	}

	if limits.MaxPerPeriod > 0 {
		used, err := c.counter.Usage(ctx, accountID, c.now())
		if err != nil {
			return Decision{}, err
		}
		if used >= int64(limits.MaxPerPeriod) {
			return Deny(LimitTypePerPeriod, fmt.Sprintf(
				"plan %s allows %d reminders per %s period", acct.Plan, limits.MaxPerPeriod, c.cfg.Period)), nil
		}
	}

	return Allow(), nil
}

func (c *PlanChecker) RecordReminderSent(ctx context.Context, accountID string, at time.Time) error {
	used, err := c.counter.Increment(ctx, accountID, at)
	if err != nil {
		return err
	}
	c.logger.Debugw("reminder usage recorded", "account_id", accountID, "used", used)
	return nil
}
