package v1

import (
	"net/http"

	"github.com/flexprice/dunning/internal/api/dto"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/service"
	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	service service.LedgerService
	log     *logger.Logger
}

func NewLedgerHandler(service service.LedgerService, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{service: service, log: log}
}

// @Summary Record a payment
// @Description Record a payment against a sent invoice. Amounts above the total payable are rejected with the maximum acceptable amount.
// @Tags Ledger
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param payment body dto.AddPaymentRequest true "Payment"
// @Success 201 {object} dto.PaymentResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Security AccountAuth
// @Router /invoices/{id}/payments [post]
func (h *LedgerHandler) AddPayment(c *gin.Context) {
	id, err := invoiceIDParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind add payment request", "error", err)
		_ = c.Error(bindError(err))
		return
	}

	resp, err := h.service.AddPayment(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Remove a payment
// @Tags Ledger
// @Param id path string true "Invoice ID"
// @Param payment_id path string true "Payment ID"
// @Success 204
// @Failure 404 {object} ierr.ErrorResponse
// @Security AccountAuth
// @Router /invoices/{id}/payments/{payment_id} [delete]
func (h *LedgerHandler) RemovePayment(c *gin.Context) {
	id, err := invoiceIDParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	paymentID := c.Param("payment_id")
	if paymentID == "" {
		_ = c.Error(ierr.NewError("payment_id is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.RemovePayment(c.Request.Context(), id, paymentID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get the ledger of an invoice
// @Description Payments in date order with total paid, remaining balance, late fee and total payable as of now
// @Tags Ledger
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.LedgerResponse
// @Security AccountAuth
// @Router /invoices/{id}/payments [get]
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	id, err := invoiceIDParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.service.GetPaymentsAndBalance(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
