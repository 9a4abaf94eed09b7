package temporal

import (
	"context"
	"errors"

	"github.com/flexprice/dunning/internal/config"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/temporal/models"
	"github.com/flexprice/dunning/internal/temporal/workflows"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
)

// ReconciliationCronWorkflowID is fixed so that only one cron execution exists per namespace
const ReconciliationCronWorkflowID = "dunning-reminder-reconciliation-cron"

// StartReconciliationCron starts the reconciliation workflow on cfg.CronSchedule.
// An execution that is already running is left untouched.
func StartReconciliationCron(ctx context.Context, c *TemporalClient, cfg config.TemporalConfig, log *logger.Logger) error {
	if cfg.CronSchedule == "" {
		log.Info("reconciliation cron schedule not configured, skipping")
		return nil
	}

	opts := client.StartWorkflowOptions{
		ID:                    ReconciliationCronWorkflowID,
		TaskQueue:             cfg.TaskQueue,
		CronSchedule:          cfg.CronSchedule,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}

	run, err := c.Client.ExecuteWorkflow(ctx, opts, workflows.WorkflowReminderReconciliation, models.ReconciliationWorkflowInput{
		TriggeredBy: models.TriggerCron,
	})
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			log.Infow("reconciliation cron already scheduled", "workflow_id", ReconciliationCronWorkflowID)
			return nil
		}
		return ierr.WithError(err).
			WithHint("Failed to schedule reminder reconciliation").
			Mark(ierr.ErrSystem)
	}

	log.Infow("reconciliation cron scheduled",
		"workflow_id", run.GetID(),
		"run_id", run.GetRunID(),
		"schedule", cfg.CronSchedule,
	)
	return nil
}
