package workflows

import (
	"time"

	"github.com/flexprice/dunning/internal/api/dto"
	"github.com/flexprice/dunning/internal/temporal/models"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// Workflow name used for registration and cron start
	WorkflowReminderReconciliation = "ReminderReconciliationWorkflow"
	// Activity name used for registration
	ActivityRunReconciliation = "RunReconciliation"
)

// ReminderReconciliationWorkflow runs one reconciliation pass. Started with a cron schedule
// it becomes the daily trigger.
func ReminderReconciliationWorkflow(ctx workflow.Context, input models.ReconciliationWorkflowInput) (*models.ReconciliationWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting reminder reconciliation workflow", "triggered_by", input.TriggeredBy)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute * 30,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second * 10,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute * 5,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var summary dto.ReconciliationSummary
	if err := workflow.ExecuteActivity(ctx, ActivityRunReconciliation, input).Get(ctx, &summary); err != nil {
		logger.Error("reminder reconciliation failed", "error", err)
		return nil, err
	}

	status := "completed"
	if summary.Errors > 0 {
		status = "partial"
	}

	logger.Info("reminder reconciliation workflow completed",
		"status", status,
		"found", summary.Found,
		"sent", summary.Sent,
		"failed", summary.Failed,
	)
	return &models.ReconciliationWorkflowResult{
		Status:  status,
		Summary: &summary,
	}, nil
}
