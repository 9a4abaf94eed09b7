package v1

import (
	"net/http"

	"github.com/flexprice/dunning/internal/api/dto"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/service"
	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	dispatcher service.ReminderDispatcher
	log        *logger.Logger
}

func NewReminderHandler(dispatcher service.ReminderDispatcher, log *logger.Logger) *ReminderHandler {
	return &ReminderHandler{dispatcher: dispatcher, log: log}
}

// @Summary Send a reminder now
// @Description Manually send one reminder kind. Thresholds and the invoice policy are skipped; quota and status guards still apply.
// @Tags Reminders
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param reminder body dto.SendReminderRequest true "Reminder"
// @Success 200 {object} dto.DispatchResponse
// @Security AccountAuth
// @Router /invoices/{id}/reminders [post]
func (h *ReminderHandler) SendReminder(c *gin.Context) {
	id, err := invoiceIDParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.SendReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	if err := req.Validate(); err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.dispatcher.Dispatch(c.Request.Context(), id, req.Kind, service.DispatchOptions{Manual: true})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List reminder history
// @Description Reminder records of an invoice, newest first
// @Tags Reminders
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.ListReminderHistoryResponse
// @Security AccountAuth
// @Router /invoices/{id}/reminders [get]
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	id, err := invoiceIDParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.dispatcher.ListReminderHistory(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
