package api

import (
	"github.com/flexprice/dunning/internal/api/cron"
	v1 "github.com/flexprice/dunning/internal/api/v1"
	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/rest/middleware"
	"github.com/flexprice/dunning/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Invoice  *v1.InvoiceHandler
	Ledger   *v1.LedgerHandler
	Reminder *v1.ReminderHandler

	CronReminder *cron.ReminderHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, gatherer prometheus.Gatherer) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// cron routes are called by the scheduler, not on behalf of an account
	cronGroup := router.Group("/cron")
	{
		reminders := cronGroup.Group("/reminders")
		reminders.POST("/reconcile", handlers.CronReminder.Reconcile)
	}

	v1Group := router.Group("/v1")
	v1Group.Use(middleware.AccountMiddleware)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/send", handlers.Invoice.SendInvoice)
		invoices.POST("/:id/mark-paid", handlers.Invoice.MarkPaid)
		invoices.POST("/:id/cancel", handlers.Invoice.CancelInvoice)

		invoices.GET("/:id/payments", handlers.Ledger.GetLedger)
		invoices.POST("/:id/payments", handlers.Ledger.AddPayment)
		invoices.DELETE("/:id/payments/:payment_id", handlers.Ledger.RemovePayment)

		invoices.GET("/:id/reminders", handlers.Reminder.ListReminders)
		invoices.POST("/:id/reminders", handlers.Reminder.SendReminder)
	}
}
