package service

import (
	"time"

	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/domain/account"
	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/domain/payment"
	"github.com/flexprice/dunning/internal/domain/reminder"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/metrics"
	"github.com/flexprice/dunning/internal/notification"
	"github.com/flexprice/dunning/internal/postgres"
	"github.com/flexprice/dunning/internal/publisher"
	"github.com/flexprice/dunning/internal/quota"
	"github.com/flexprice/dunning/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	AccountRepo  account.Repository
	InvoiceRepo  invoice.Repository
	PaymentRepo  payment.Repository
	ReminderRepo reminder.Repository

	// Publishers
	EventPublisher publisher.EventPublisher

	// Collaborators
	Sender        notification.Sender
	Composer      *notification.Composer
	QuotaChecker  quota.Checker
	QuotaRecorder quota.Recorder

	Metrics *metrics.Metrics
	Sentry  *sentry.Service

	// Now is the clock; nil means time.Now in UTC
	Now func() time.Time
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	accountRepo account.Repository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	reminderRepo reminder.Repository,
	eventPublisher publisher.EventPublisher,
	sender notification.Sender,
	composer *notification.Composer,
	planChecker *quota.PlanChecker,
	metrics *metrics.Metrics,
	sentry *sentry.Service,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		DB:             db,
		AccountRepo:    accountRepo,
		InvoiceRepo:    invoiceRepo,
		PaymentRepo:    paymentRepo,
		ReminderRepo:   reminderRepo,
		EventPublisher: eventPublisher,
		Sender:         sender,
		Composer:       composer,
		QuotaChecker:   planChecker,
		QuotaRecorder:  planChecker,
		Metrics:        metrics,
		Sentry:         sentry,
	}
}

func (p ServiceParams) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}
