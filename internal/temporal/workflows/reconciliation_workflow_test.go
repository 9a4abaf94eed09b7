package workflows_test

import (
	"context"
	"testing"

	"github.com/flexprice/dunning/internal/api/dto"
	"github.com/flexprice/dunning/internal/temporal/activities"
	"github.com/flexprice/dunning/internal/temporal/models"
	"github.com/flexprice/dunning/internal/temporal/workflows"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

type stubReconciliation struct {
	summary *dto.ReconciliationSummary
	runs    int
}

func (s *stubReconciliation) Run(context.Context) *dto.ReconciliationSummary {
	s.runs++
	return s.summary
}

type ReconciliationWorkflowSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env  *testsuite.TestWorkflowEnvironment
	stub *stubReconciliation
}

func TestReconciliationWorkflow(t *testing.T) {
	suite.Run(t, new(ReconciliationWorkflowSuite))
}

func (s *ReconciliationWorkflowSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.stub = &stubReconciliation{}
	acts := activities.NewReconciliationActivities(s.stub)
	s.env.RegisterActivityWithOptions(acts.RunReconciliation, activity.RegisterOptions{
		Name: workflows.ActivityRunReconciliation,
	})
}

func (s *ReconciliationWorkflowSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func (s *ReconciliationWorkflowSuite) TestCompleted() {
	s.stub.summary = &dto.ReconciliationSummary{Found: 3, Sent: 2, Failed: 1, Invoices: 2}

	s.env.ExecuteWorkflow(workflows.ReminderReconciliationWorkflow, models.ReconciliationWorkflowInput{
		TriggeredBy: models.TriggerCron,
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result models.ReconciliationWorkflowResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal("completed", result.Status)
	s.Equal(3, result.Summary.Found)
	s.Equal(2, result.Summary.Sent)
	s.Equal(1, result.Summary.Failed)
	s.Equal(1, s.stub.runs)
}

func (s *ReconciliationWorkflowSuite) TestPartial() {
	s.stub.summary = &dto.ReconciliationSummary{Found: 1, Errors: 1}

	s.env.ExecuteWorkflow(workflows.ReminderReconciliationWorkflow, models.ReconciliationWorkflowInput{
		TriggeredBy: models.TriggerManual,
	})

	var result models.ReconciliationWorkflowResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal("partial", result.Status)
	s.Equal(1, result.Summary.Errors)
}
