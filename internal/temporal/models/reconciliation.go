package models

import (
	"github.com/flexprice/dunning/internal/api/dto"
)

const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
)

// ReconciliationWorkflowInput starts one reconciliation run
type ReconciliationWorkflowInput struct {
	TriggeredBy string `json:"triggered_by"`
}

// ReconciliationWorkflowResult is returned by the workflow for each run
type ReconciliationWorkflowResult struct {
	Status  string                     `json:"status"`
	Summary *dto.ReconciliationSummary `json:"summary"`
}
