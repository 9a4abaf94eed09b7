package cron

import (
	"net/http"
	"time"

	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/service"
	"github.com/gin-gonic/gin"
)

// ReminderHandler handles reminder related cron jobs
type ReminderHandler struct {
	reconciliation service.ReminderReconciliation
	logger         *logger.Logger
}

// NewReminderHandler creates a new reminder cron handler
func NewReminderHandler(reconciliation service.ReminderReconciliation, logger *logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		reconciliation: reconciliation,
		logger:         logger,
	}
}

// Reconcile runs one reconciliation pass and returns its summary.
// Per invoice failures are counted in the summary, so the response is always 200.
func (h *ReminderHandler) Reconcile(c *gin.Context) {
	h.logger.Infow("starting reminder reconciliation cron job", "time", time.Now().UTC().Format(time.RFC3339))

	summary := h.reconciliation.Run(c.Request.Context())

	h.logger.Infow("completed reminder reconciliation cron job",
		"found", summary.Found,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"errors", summary.Errors,
	)
	c.JSON(http.StatusOK, summary)
}
