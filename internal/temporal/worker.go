package temporal

import (
	"context"

	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/service"
	"go.temporal.io/sdk/worker"
	"go.uber.org/fx"
)

// Worker manages the Temporal worker instance.
type Worker struct {
	worker worker.Worker
	client *TemporalClient
	cfg    config.TemporalConfig
	log    *logger.Logger
}

// NewWorker creates a new Temporal worker and registers the reconciliation workflow and activity.
func NewWorker(client *TemporalClient, cfg config.TemporalConfig, reconciliation service.ReminderReconciliation, log *logger.Logger) *Worker {
	w := worker.New(client.Client, cfg.TaskQueue, worker.Options{
		// reconciliation runs must never overlap inside one worker
		MaxConcurrentActivityExecutionSize: 1,
	})

	RegisterWorkflowsAndActivities(w, reconciliation)

	return &Worker{
		worker: w,
		client: client,
		cfg:    cfg,
		log:    log,
	}
}

// Start starts the Temporal worker and makes sure the reconciliation cron is scheduled.
func (w *Worker) Start(ctx context.Context) error {
	w.log.Infow("starting temporal worker", "task_queue", w.cfg.TaskQueue)
	if err := w.worker.Start(); err != nil {
		return err
	}
	return StartReconciliationCron(ctx, w.client, w.cfg, w.log)
}

// Stop stops the Temporal worker.
func (w *Worker) Stop() {
	w.log.Info("stopping temporal worker")
	if w.worker != nil {
		w.worker.Stop()
	}
}

// RegisterWithLifecycle registers the worker with the fx lifecycle.
func (w *Worker) RegisterWithLifecycle(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				w.Stop()
				w.client.Close()
				close(done)
			}()

			select {
			case <-done:
				w.log.Info("temporal worker stopped successfully")
			case <-ctx.Done():
				w.log.Error("timeout while stopping temporal worker")
			}
			return nil
		},
	})
}
