package service

import (
	"github.com/flexprice/dunning/internal/testutil"
	"github.com/shopspring/decimal"
)

// newTestServiceParams wires the in-memory collaborators of the base suite
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		AccountRepo:    stores.AccountRepo,
		InvoiceRepo:    stores.InvoiceRepo,
		PaymentRepo:    stores.PaymentRepo,
		ReminderRepo:   stores.ReminderRepo,
		EventPublisher: s.GetPublisher(),
		Sender:         s.GetSender(),
		Composer:       s.GetComposer(),
		QuotaChecker:   s.GetQuota(),
		QuotaRecorder:  s.GetQuota(),
		Metrics:        s.GetMetrics(),
		Now:            s.GetClock().Now,
	}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
