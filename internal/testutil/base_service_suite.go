package testutil

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/domain/account"
	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/domain/latefee"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/metrics"
	"github.com/flexprice/dunning/internal/notification"
	"github.com/flexprice/dunning/internal/types"
	"github.com/flexprice/dunning/internal/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository implementations for testing
type Stores struct {
	AccountRepo  *InMemoryAccountStore
	InvoiceRepo  *InMemoryInvoiceStore
	PaymentRepo  *InMemoryPaymentStore
	ReminderRepo *InMemoryReminderStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	publisher *InMemoryPublisherService
	sender    *FakeSender
	quota     *FakeQuota
	db        *MockPostgresClient
	logger    *logger.Logger
	config    *config.Configuration
	clock     *Clock
	metrics   *metrics.Metrics
	composer  *notification.Composer
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Email.FromAddress = "billing@example.com"
	cfg.Email.ReplyTo = "billing@example.com"
	// no inter-send delay in tests
	cfg.Reminder.SendInterval = 0
	cfg.Reminder.OutcomeMaxRetries = 1

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
	s.composer = notification.NewComposer(cfg)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.clock = NewClock(time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC))
	s.metrics = metrics.New(prometheus.NewRegistry())
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		AccountRepo:  NewInMemoryAccountStore(),
		InvoiceRepo:  NewInMemoryInvoiceStore(),
		PaymentRepo:  NewInMemoryPaymentStore(),
		ReminderRepo: NewInMemoryReminderStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.publisher = NewInMemoryEventPublisher()
	s.sender = NewFakeSender()
	s.quota = NewFakeQuota()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.AccountRepo.Clear()
	s.stores.InvoiceRepo.Clear()
	s.stores.PaymentRepo.Clear()
	s.stores.ReminderRepo.Clear()
	s.publisher.Clear()
	s.sender.Reset()
	s.quota.Reset()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPublisher returns the capturing event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryPublisherService {
	return s.publisher
}

// GetSender returns the fake notification sender
func (s *BaseServiceTestSuite) GetSender() *FakeSender {
	return s.sender
}

// GetQuota returns the programmable quota checker
func (s *BaseServiceTestSuite) GetQuota() *FakeQuota {
	return s.quota
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetMetrics() *metrics.Metrics {
	return s.metrics
}

func (s *BaseServiceTestSuite) GetComposer() *notification.Composer {
	return s.composer
}

// GetClock returns the controllable clock services read through ServiceParams.Now
func (s *BaseServiceTestSuite) GetClock() *Clock {
	return s.clock
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.clock.Now()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}

// CreateAccount stores an active account on plan
func (s *BaseServiceTestSuite) CreateAccount(plan types.PlanTier) *account.Account {
	a := &account.Account{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ACCOUNT),
		Name:          "Acme Ltd",
		Plan:          plan,
		AccountStatus: types.AccountStatusActive,
		BaseModel:     types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(s.stores.AccountRepo.Create(s.ctx, a))
	return a
}

// InvoiceOption customises CreateInvoice
type InvoiceOption func(inv *invoice.Invoice)

func WithStatus(status types.InvoiceStatus) InvoiceOption {
	return func(inv *invoice.Invoice) {
		inv.InvoiceStatus = status
	}
}

func WithLateFee(policy *latefee.Policy) InvoiceOption {
	return func(inv *invoice.Invoice) {
		inv.LateFeePolicy = policy
	}
}

func WithReminderPolicy(policy *invoice.ReminderPolicy) InvoiceOption {
	return func(inv *invoice.Invoice) {
		inv.ReminderPolicy = policy
	}
}

// CreateInvoice stores a SENT usd invoice with reminders enabled, unless options say otherwise
func (s *BaseServiceTestSuite) CreateInvoice(accountID string, total decimal.Decimal, dueDate time.Time, opts ...InvoiceOption) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		AccountID:      accountID,
		InvoiceNumber:  "INV-" + types.GenerateUUID()[:8],
		CustomerName:   "Jane Customer",
		CustomerEmail:  "jane@customer.test",
		Currency:       "usd",
		Total:          total,
		DueDate:        types.StartOfDay(dueDate),
		InvoiceStatus:  types.InvoiceStatusSent,
		ReminderPolicy: &invoice.ReminderPolicy{Enabled: true},
		SentAt:         lo.ToPtr(dueDate.AddDate(0, 0, -30)),
		BaseModel:      types.GetDefaultBaseModel(s.ctx),
	}
	for _, opt := range opts {
		opt(inv)
	}
	s.Require().NoError(s.stores.InvoiceRepo.Create(s.ctx, inv))
	return inv
}
