package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/flexprice/dunning/docs/swagger"
	"github.com/flexprice/dunning/internal/api"
	"github.com/flexprice/dunning/internal/api/cron"
	"github.com/flexprice/dunning/internal/api/dto"
	v1 "github.com/flexprice/dunning/internal/api/v1"
	"github.com/flexprice/dunning/internal/domain/account"
	"github.com/flexprice/dunning/internal/domain/latefee"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/service"
	"github.com/flexprice/dunning/internal/testutil"
	"github.com/flexprice/dunning/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router  *gin.Engine
	account *account.Account
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	params := service.ServiceParams{
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

	dispatcher := service.NewReminderDispatcher(params)
	reconciliation := service.NewReminderReconciliation(params, service.NewReminderScheduler(params), dispatcher)
	log := s.GetLogger()

	handlers := api.Handlers{
		Health:       v1.NewHealthHandler(),
		Invoice:      v1.NewInvoiceHandler(service.NewInvoiceService(params), log),
		Ledger:       v1.NewLedgerHandler(service.NewLedgerService(params), log),
		Reminder:     v1.NewReminderHandler(dispatcher, log),
		CronReminder: cron.NewReminderHandler(reconciliation, log),
	}
	s.router = api.NewRouter(handlers, s.GetConfig(), prometheus.NewRegistry())
	s.account = s.CreateAccount(types.PlanTierStarter)
}

func (s *RouterSuite) TearDownTest() {
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *RouterSuite) do(method, path string, body any, accountID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if accountID != "" {
		req.Header.Set(types.HeaderAccountID, accountID)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *RouterSuite) TestHealthAndMetrics() {
	w := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))

	w = s.do(http.MethodGet, "/metrics", nil, "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestSwaggerDocCoversV1Routes() {
	w := s.do(http.MethodGet, "/swagger/doc.json", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var doc struct {
		BasePath string                               `json:"basePath"`
		Paths    map[string]map[string]map[string]any `json:"paths"`
	}
	s.decode(w, &doc)
	s.Equal("/v1", doc.BasePath)

	for _, route := range s.router.Routes() {
		if !strings.HasPrefix(route.Path, "/v1/") {
			continue
		}
		segments := strings.Split(strings.TrimPrefix(route.Path, "/v1"), "/")
		for i, seg := range segments {
			if strings.HasPrefix(seg, ":") {
				segments[i] = "{" + seg[1:] + "}"
			}
		}
		path := strings.Join(segments, "/")
		s.Contains(doc.Paths, path, route.Path)
		s.Contains(doc.Paths[path], strings.ToLower(route.Method), route.Method+" "+route.Path)
	}

	w = s.do(http.MethodGet, "/swagger/index.html", nil, "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestAccountHeaderRequired() {
	w := s.do(http.MethodGet, "/v1/invoices", nil, "")
	s.Equal(http.StatusForbidden, w.Code)

	var resp ierr.ErrorResponse
	s.decode(w, &resp)
	s.False(resp.Success)
	s.Contains(resp.Error.Display, types.HeaderAccountID)
}

func (s *RouterSuite) TestCreateAndGetInvoice() {
	w := s.do(http.MethodPost, "/v1/invoices", map[string]any{
		"customer_name":  "Jane Customer",
		"customer_email": "jane@customer.test",
		"currency":       "usd",
		"total":          "120.00",
		"due_date":       "2025-03-15T00:00:00Z",
	}, s.account.ID)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created dto.InvoiceResponse
	s.decode(w, &created)
	s.Equal(types.InvoiceStatusDraft, created.InvoiceStatus)
	s.Equal(s.account.ID, created.AccountID)

	w = s.do(http.MethodGet, "/v1/invoices/"+created.ID, nil, s.account.ID)
	s.Require().Equal(http.StatusOK, w.Code)

	var got dto.InvoiceResponse
	s.decode(w, &got)
	s.Equal(created.ID, got.ID)
	s.Require().NotNil(got.Balance)
	s.True(got.Balance.RemainingBalance.Equal(decimal.NewFromInt(120)))

	// other accounts cannot see it
	other := s.CreateAccount(types.PlanTierFree)
	w = s.do(http.MethodGet, "/v1/invoices/"+created.ID, nil, other.ID)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestCreateInvoiceInvalidBody() {
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(types.HeaderAccountID, s.account.ID)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestPaymentsAndLedger() {
	inv := s.CreateInvoice(s.account.ID, decimal.NewFromInt(100), s.GetNow().AddDate(0, 0, 10))
	base := "/v1/invoices/" + inv.ID + "/payments"

	w := s.do(http.MethodPost, base, map[string]any{"amount": "40"}, s.account.ID)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var p dto.PaymentResponse
	s.decode(w, &p)
	s.NotEmpty(p.ID)

	// over the payable amount
	w = s.do(http.MethodPost, base, map[string]any{"amount": "70"}, s.account.ID)
	s.Require().Equal(http.StatusUnprocessableEntity, w.Code)
	var errResp ierr.ErrorResponse
	s.decode(w, &errResp)
	s.Contains(errResp.Error.Display, "60")

	w = s.do(http.MethodGet, base, nil, s.account.ID)
	s.Require().Equal(http.StatusOK, w.Code)
	var ledger dto.LedgerResponse
	s.decode(w, &ledger)
	s.Len(ledger.Payments, 1)
	s.True(ledger.TotalPaid.Equal(decimal.NewFromInt(40)))
	s.True(ledger.RemainingBalance.Equal(decimal.NewFromInt(60)))

	w = s.do(http.MethodDelete, base+"/"+p.ID, nil, s.account.ID)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, base+"/"+p.ID, nil, s.account.ID)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestFullPaymentThenAlreadyPaid() {
	inv := s.CreateInvoice(s.account.ID, decimal.NewFromInt(100), s.GetNow().AddDate(0, 0, -10),
		testutil.WithLateFee(&latefee.Policy{
			Enabled: true,
			FeeType: types.LateFeeTypeFixed,
			Amount:  decimal.NewFromInt(15),
		}))
	base := "/v1/invoices/" + inv.ID + "/payments"

	w := s.do(http.MethodPost, base, map[string]any{"amount": "115"}, s.account.ID)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, base, map[string]any{"amount": "1"}, s.account.ID)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/v1/invoices/"+inv.ID, nil, s.account.ID)
	var got dto.InvoiceResponse
	s.decode(w, &got)
	s.Equal(types.InvoiceStatusPaid, got.InvoiceStatus)
}

func (s *RouterSuite) TestManualReminderAndHistory() {
	inv := s.CreateInvoice(s.account.ID, decimal.NewFromInt(100), s.GetNow().AddDate(0, 0, -3))
	base := "/v1/invoices/" + inv.ID + "/reminders"

	w := s.do(http.MethodPost, base, map[string]any{"kind": "URGENT"}, s.account.ID)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var sent dto.DispatchResponse
	s.decode(w, &sent)
	s.Equal(types.ReminderDispatchSent, sent.Result)

	w = s.do(http.MethodPost, base, map[string]any{"kind": "LOUD"}, s.account.ID)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, base, nil, s.account.ID)
	s.Require().Equal(http.StatusOK, w.Code)
	var history dto.ListReminderHistoryResponse
	s.decode(w, &history)
	s.Len(history.Items, 1)
}

func (s *RouterSuite) TestCronReconcile() {
	s.CreateInvoice(s.account.ID, decimal.NewFromInt(100), s.GetNow().AddDate(0, 0, -8))

	w := s.do(http.MethodPost, "/cron/reminders/reconcile", nil, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var summary dto.ReconciliationSummary
	s.decode(w, &summary)
	s.Equal(1, summary.Invoices)
	s.Equal(2, summary.Sent)
	s.Len(s.GetSender().Sent(), 2)
}
