package activities

import (
	"context"

	"github.com/flexprice/dunning/internal/api/dto"
	"github.com/flexprice/dunning/internal/service"
	"github.com/flexprice/dunning/internal/temporal/models"
	"go.temporal.io/sdk/activity"
)

// ReconciliationActivities runs the reminder reconciliation inside a temporal activity
type ReconciliationActivities struct {
	reconciliation service.ReminderReconciliation
}

func NewReconciliationActivities(reconciliation service.ReminderReconciliation) *ReconciliationActivities {
	return &ReconciliationActivities{reconciliation: reconciliation}
}

// RunReconciliation performs one full pass and returns its summary
func (a *ReconciliationActivities) RunReconciliation(ctx context.Context, input models.ReconciliationWorkflowInput) (*dto.ReconciliationSummary, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("running reminder reconciliation", "triggered_by", input.TriggeredBy)

	summary := a.reconciliation.Run(ctx)

	logger.Info("reminder reconciliation completed",
		"found", summary.Found,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"errors", summary.Errors,
	)
	return summary, nil
}
