package service

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/api/dto"
	"github.com/flexprice/dunning/internal/domain/events"
	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/domain/payment"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// LedgerService is the single source of truth for what has been paid on an invoice.
// Every balance is derived from the stored payments on each call.
type LedgerService interface {
	AddPayment(ctx context.Context, invoiceID string, req dto.AddPaymentRequest) (*dto.PaymentResponse, error)
	RemovePayment(ctx context.Context, invoiceID, paymentID string) error
	TotalPaid(ctx context.Context, invoiceID string) (decimal.Decimal, error)
	RemainingBalance(ctx context.Context, invoiceID string) (decimal.Decimal, error)
	GetPaymentsAndBalance(ctx context.Context, invoiceID string) (*dto.LedgerResponse, error)
}

type ledgerService struct {
	ServiceParams
	resolver *statusResolver
}

func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{
		ServiceParams: params,
		resolver:      &statusResolver{ServiceParams: params},
	}
}

func (s *ledgerService) AddPayment(ctx context.Context, invoiceID string, req dto.AddPaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		p   *payment.Payment
		evs []*events.Event
	)

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		// reset for a retried transaction
		evs = nil
		now := s.now()

		inv, err := s.getOwnedInvoice(ctx, invoiceID, true)
		if err != nil {
			return err
		}

		switch inv.InvoiceStatus {
		case types.InvoiceStatusPaid:
			return payment.NewAlreadyPaidError(inv.ID)
		case types.InvoiceStatusSent:
		default:
			return invoice.NewInvalidTransitionError(inv, "record a payment on")
		}

		bal, err := s.loadBalance(ctx, inv, now)
		if err != nil {
			return err
		}

		p = req.ToPayment(ctx, inv.ID, inv.Currency, now)
		if err := p.Validate(); err != nil {
			return err
		}

		// the customer may pay the balance plus whatever fee has accrued, never more
		if p.Amount.GreaterThan(bal.fee.TotalPayable) {
			return payment.NewExceedsPayableError(inv.ID, p.Amount, bal.fee.TotalPayable)
		}

		if err := s.PaymentRepo.Create(ctx, p); err != nil {
			return err
		}

		evs = append(evs, events.NewEvent(ctx, types.AuditPaymentRecorded, inv.AccountID, inv.ID, now, map[string]interface{}{
			"payment_id": p.ID,
			"amount":     p.Amount.String(),
		}))

		bal = computeBalance(inv, append(bal.payments, p), now)
		resolved, err := s.resolver.resolve(ctx, inv, bal, now)
		if err != nil {
			return err
		}
		evs = append(evs, resolved...)
		return nil
	})
	if err != nil {
		s.Metrics.ObservePayment("add", "error")
		return nil, err
	}

	s.Metrics.ObservePayment("add", "ok")
	s.publishEvents(ctx, evs)

	s.Logger.Infow("payment recorded",
		"invoice_id", invoiceID,
		"payment_id", p.ID,
		"amount", p.Amount.String(),
	)

	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *ledgerService) RemovePayment(ctx context.Context, invoiceID, paymentID string) error {
	var evs []*events.Event

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		// reset for a retried transaction
		evs = nil
		now := s.now()

		inv, err := s.getOwnedInvoice(ctx, invoiceID, true)
		if err != nil {
			return err
		}

		p, err := s.PaymentRepo.Get(ctx, paymentID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return payment.NewNotFoundError(invoiceID, paymentID)
			}
			return err
		}
		if p.InvoiceID != inv.ID || !p.IsActive() {
			return payment.NewNotFoundError(invoiceID, paymentID)
		}

		// a cancelled invoice keeps its ledger frozen
		if inv.InvoiceStatus == types.InvoiceStatusCancelled {
			return invoice.NewInvalidTransitionError(inv, "remove a payment from")
		}

		p.Touch(ctx, now)
		if err := s.PaymentRepo.Delete(ctx, p); err != nil {
			return err
		}

		evs = append(evs, events.NewEvent(ctx, types.AuditPaymentRemoved, inv.AccountID, inv.ID, now, map[string]interface{}{
			"payment_id": p.ID,
			"amount":     p.Amount.String(),
		}))

		bal, err := s.loadBalance(ctx, inv, now)
		if err != nil {
			return err
		}

		resolved, err := s.resolver.resolve(ctx, inv, bal, now)
		if err != nil {
			return err
		}
		evs = append(evs, resolved...)
		return nil
	})
	if err != nil {
		s.Metrics.ObservePayment("remove", "error")
		return err
	}

	s.Metrics.ObservePayment("remove", "ok")
	s.publishEvents(ctx, evs)

	s.Logger.Infow("payment removed",
		"invoice_id", invoiceID,
		"payment_id", paymentID,
	)
	return nil
}

func (s *ledgerService) TotalPaid(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	bal, err := s.balanceFor(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	return bal.totalPaid, nil
}

func (s *ledgerService) RemainingBalance(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	bal, err := s.balanceFor(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	return bal.remaining, nil
}

func (s *ledgerService) GetPaymentsAndBalance(ctx context.Context, invoiceID string) (*dto.LedgerResponse, error) {
	inv, err := s.getOwnedInvoice(ctx, invoiceID, false)
	if err != nil {
		return nil, err
	}

	now := s.now()
	bal, err := s.loadBalance(ctx, inv, now)
	if err != nil {
		return nil, err
	}
	return newLedgerResponse(inv, bal, now), nil
}

func (s *ledgerService) balanceFor(ctx context.Context, invoiceID string) (*balance, error) {
	inv, err := s.getOwnedInvoice(ctx, invoiceID, false)
	if err != nil {
		return nil, err
	}
	return s.loadBalance(ctx, inv, s.now())
}

func newLedgerResponse(inv *invoice.Invoice, bal *balance, asOf time.Time) *dto.LedgerResponse {
	return &dto.LedgerResponse{
		InvoiceID: inv.ID,
		Currency:  inv.Currency,
		Payments: lo.Map(bal.payments, func(p *payment.Payment, _ int) *dto.PaymentResponse {
			return &dto.PaymentResponse{Payment: p}
		}),
		TotalPaid:         bal.totalPaid,
		RemainingBalance:  bal.remaining,
		LateFee:           bal.fee.LateFee,
		LateFeeChargeable: bal.fee.Chargeable,
		TotalPayable:      bal.fee.TotalPayable,
		DaysOverdue:       bal.fee.DaysOverdue,
		AsOf:              asOf,
	}
}
