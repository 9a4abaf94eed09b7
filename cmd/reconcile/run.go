package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/flexprice/dunning/internal/cache"
	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/email"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/metrics"
	"github.com/flexprice/dunning/internal/notification"
	"github.com/flexprice/dunning/internal/postgres"
	"github.com/flexprice/dunning/internal/publisher"
	"github.com/flexprice/dunning/internal/pubsub/memory"
	"github.com/flexprice/dunning/internal/quota"
	"github.com/flexprice/dunning/internal/redis"
	"github.com/flexprice/dunning/internal/repository"
	"github.com/flexprice/dunning/internal/sentry"
	"github.com/flexprice/dunning/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func runReconcile(cmd *cobra.Command, _ []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	pretty, _ := cmd.Flags().GetBool("pretty")

	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sentrySvc := sentry.NewSentryService(cfg, log)
	if err := sentrySvc.Init(); err != nil {
		return err
	}
	defer sentrySvc.Flush(2)

	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	emailClient, err := email.NewEmailClient(email.ConfigFrom(cfg))
	if err != nil {
		return err
	}

	ps := memory.NewPubSub(log)
	defer ps.Close()

	accountRepo := repository.NewAccountRepository(db, log)
	invoiceRepo := repository.NewInvoiceRepository(db, log)
	paymentRepo := repository.NewPaymentRepository(db, log)
	reminderRepo := repository.NewReminderRepository(db, log)

	planChecker := quota.NewPlanChecker(
		cfg,
		accountRepo,
		invoiceRepo,
		quota.NewUsageCounter(redisClient, cfg),
		cache.NewInMemoryCache(cfg),
		log,
	)

	params := service.NewServiceParams(
		log,
		cfg,
		postgres.NewClient(db, sentrySvc),
		accountRepo,
		invoiceRepo,
		paymentRepo,
		reminderRepo,
		publisher.NewEventPublisher(cfg, ps, log),
		notification.NewSender(emailClient, log),
		notification.NewComposer(cfg),
		planChecker,
		metrics.New(prometheus.NewRegistry()),
		sentrySvc,
	)

	reconciliation := service.NewReminderReconciliation(
		params,
		service.NewReminderScheduler(params),
		service.NewReminderDispatcher(params),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	summary := reconciliation.Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(summary)
}
