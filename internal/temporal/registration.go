package temporal

import (
	"github.com/flexprice/dunning/internal/service"
	"github.com/flexprice/dunning/internal/temporal/activities"
	"github.com/flexprice/dunning/internal/temporal/workflows"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

// RegisterWorkflowsAndActivities registers all workflows and activities with a Temporal worker.
func RegisterWorkflowsAndActivities(w worker.Registry, reconciliation service.ReminderReconciliation) {
	w.RegisterWorkflowWithOptions(workflows.ReminderReconciliationWorkflow, workflow.RegisterOptions{
		Name: workflows.WorkflowReminderReconciliation,
	})

	acts := activities.NewReconciliationActivities(reconciliation)
	w.RegisterActivityWithOptions(acts.RunReconciliation, activity.RegisterOptions{
		Name: workflows.ActivityRunReconciliation,
	})
}
