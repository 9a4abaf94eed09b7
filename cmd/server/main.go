package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "github.com/flexprice/dunning/docs/swagger"
	"github.com/flexprice/dunning/internal/api"
	"github.com/flexprice/dunning/internal/api/cron"
	v1 "github.com/flexprice/dunning/internal/api/v1"
	"github.com/flexprice/dunning/internal/cache"
	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/email"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/metrics"
	"github.com/flexprice/dunning/internal/notification"
	"github.com/flexprice/dunning/internal/postgres"
	"github.com/flexprice/dunning/internal/publisher"
	"github.com/flexprice/dunning/internal/pubsub"
	"github.com/flexprice/dunning/internal/pubsub/memory"
	pubsubRouter "github.com/flexprice/dunning/internal/pubsub/router"
	"github.com/flexprice/dunning/internal/quota"
	"github.com/flexprice/dunning/internal/redis"
	"github.com/flexprice/dunning/internal/repository"
	"github.com/flexprice/dunning/internal/sentry"
	"github.com/flexprice/dunning/internal/service"
	"github.com/flexprice/dunning/internal/temporal"
	"github.com/flexprice/dunning/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

// @title Dunning API
// @version 1.0
// @description Payment ledger and reminder lifecycle service
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey AccountAuth
// @in header
// @name X-Account-ID
// @description Account the request acts on
func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			provideRegistry,
			metrics.New,

			// Cache
			provideCache,

			// Redis backed quota usage
			redis.NewClient,
			quota.NewUsageCounter,
			quota.NewPlanChecker,

			// Email
			provideEmailClient,
			notification.NewSender,
			notification.NewComposer,

			// Audit events
			providePubSub,
			publisher.NewEventPublisher,
			pubsubRouter.NewRouter,

			// Repositories
			repository.NewAccountRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
			repository.NewReminderRepository,

			// Temporal
			provideTemporalConfig,
			provideTemporalClient,
		),
		sentry.Module(),
		postgres.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewInvoiceService,
			service.NewLedgerService,
			service.NewReminderScheduler,
			service.NewReminderDispatcher,
			service.NewReminderReconciliation,
		),
	)

	// API and Temporal
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideRegistry() (*prometheus.Registry, prometheus.Registerer, prometheus.Gatherer) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, reg, reg
}

func provideCache(cfg *config.Configuration) cache.Cache {
	return cache.NewInMemoryCache(cfg)
}

func provideEmailClient(cfg *config.Configuration) (*email.EmailClient, error) {
	return email.NewEmailClient(email.ConfigFrom(cfg))
}

func providePubSub(log *logger.Logger) (*memory.PubSub, pubsub.Publisher) {
	ps := memory.NewPubSub(log)
	return ps, ps
}

func provideHandlers(
	log *logger.Logger,
	invoiceService service.InvoiceService,
	ledgerService service.LedgerService,
	dispatcher service.ReminderDispatcher,
	reconciliation service.ReminderReconciliation,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(),
		Invoice:      v1.NewInvoiceHandler(invoiceService, log),
		Ledger:       v1.NewLedgerHandler(ledgerService, log),
		Reminder:     v1.NewReminderHandler(dispatcher, log),
		CronReminder: cron.NewReminderHandler(reconciliation, log),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, gatherer prometheus.Gatherer) *gin.Engine {
	return api.NewRouter(handlers, cfg, gatherer)
}

func provideTemporalConfig(cfg *config.Configuration) *config.TemporalConfig {
	return &cfg.Temporal
}

// provideTemporalClient returns nil when temporal is disabled; the cron endpoint is the fallback trigger
func provideTemporalClient(lc fx.Lifecycle, cfg *config.TemporalConfig, log *logger.Logger) (*temporal.TemporalClient, error) {
	if !cfg.Enabled {
		log.Info("temporal disabled, reconciliation runs through the cron endpoint only")
		return nil, nil
	}

	c, err := temporal.NewTemporalClient(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.Close()
			return nil
		},
	})
	return c, nil
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	temporalClient *temporal.TemporalClient,
	reconciliation service.ReminderReconciliation,
	router *pubsubRouter.Router,
	ps *memory.PubSub,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, ps, cfg, log)
		startTemporalWorker(lc, temporalClient, cfg, reconciliation, log)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, ps, cfg, log)
	case types.ModeWorker:
		if temporalClient == nil {
			log.Fatal("temporal must be enabled for worker mode")
		}
		startMessageRouter(lc, router, ps, cfg, log)
		startTemporalWorker(lc, temporalClient, cfg, reconciliation, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startTemporalWorker(
	lc fx.Lifecycle,
	temporalClient *temporal.TemporalClient,
	cfg *config.Configuration,
	reconciliation service.ReminderReconciliation,
	log *logger.Logger,
) {
	if temporalClient == nil {
		return
	}
	worker := temporal.NewWorker(temporalClient, cfg.Temporal, reconciliation, log)
	worker.RegisterWithLifecycle(lc)
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	ps *memory.PubSub,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	// Register handlers before starting the router
	router.AddNoPublishHandler(
		"audit_log",
		cfg.Events.Topic,
		ps,
		publisher.AuditLogHandler(log),
	)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting message router")
			go func() {
				if err := router.Run(context.Background()); err != nil {
					log.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping message router")
			return router.Close()
		},
	})
}
