package service

import (
	"context"

	"github.com/flexprice/dunning/internal/api/dto"
	"github.com/flexprice/dunning/internal/domain/events"
	"github.com/flexprice/dunning/internal/domain/invoice"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
)

// InvoiceService manages the invoice lifecycle: DRAFT -> SENT -> PAID | CANCELLED
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	SendInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	// MarkPaid is the manual override. It does not touch the ledger.
	MarkPaid(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
	resolver *statusResolver
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		resolver:      &statusResolver{ServiceParams: params},
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	accountID := lo.CoalesceOrEmpty(types.GetAccountID(ctx), req.AccountID)
	if accountID == "" {
		return nil, ierr.NewError("account_id is required").
			WithHint("Invoice must belong to an account").
			Mark(ierr.ErrValidation)
	}
	if req.AccountID != "" && req.AccountID != accountID {
		return nil, ierr.NewError("account mismatch").
			WithHint("Invoices can only be created for the calling account").
			Mark(ierr.ErrPermissionDenied)
	}

	if _, err := s.AccountRepo.Get(ctx, accountID); err != nil {
		return nil, err
	}

	now := s.now()
	inv := req.ToInvoice(ctx, accountID, now)
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice created",
		"invoice_id", inv.ID,
		"account_id", inv.AccountID,
		"total", inv.Total.String(),
	)

	return dto.NewInvoiceResponse(inv, now), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.getOwnedInvoice(ctx, id, false)
	if err != nil {
		return nil, err
	}

	now := s.now()
	bal, err := s.loadBalance(ctx, inv, now)
	if err != nil {
		return nil, err
	}

	resp := dto.NewInvoiceResponse(inv, now)
	resp.Balance = newLedgerResponse(inv, bal, now)
	return resp, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if accountID := types.GetAccountID(ctx); accountID != "" {
		filter.AccountID = accountID
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv, now)
	})

	resp := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *invoiceService) SendInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return s.transition(ctx, id, func(ctx context.Context, inv *invoice.Invoice) ([]*events.Event, error) {
		if inv.InvoiceStatus != types.InvoiceStatusDraft {
			return nil, invoice.NewInvalidTransitionError(inv, "send")
		}

		now := s.now()
		inv.InvoiceStatus = types.InvoiceStatusSent
		inv.SentAt = lo.ToPtr(now)
		inv.Touch(ctx, now)

		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return nil, err
		}

		return []*events.Event{
			events.NewEvent(ctx, types.AuditInvoiceSent, inv.AccountID, inv.ID, now, map[string]interface{}{
				"total":    inv.Total.String(),
				"due_date": inv.DueDate.Format(types.DateLayout),
			}),
		}, nil
	})
}

func (s *invoiceService) MarkPaid(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return s.transition(ctx, id, func(ctx context.Context, inv *invoice.Invoice) ([]*events.Event, error) {
		switch inv.InvoiceStatus {
		case types.InvoiceStatusSent:
		case types.InvoiceStatusPaid:
			return nil, ierr.NewError("invoice already paid").
				WithHint("This invoice is already marked as paid").
				WithReportableDetails(map[string]any{
					"invoice_id": inv.ID,
				}).
				Mark(ierr.ErrAlreadyPaid)
		default:
			return nil, invoice.NewInvalidTransitionError(inv, "mark paid")
		}
		return s.resolver.markPaid(ctx, inv, types.PaidSourceManual, s.now())
	})
}

func (s *invoiceService) CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return s.transition(ctx, id, func(ctx context.Context, inv *invoice.Invoice) ([]*events.Event, error) {
		switch inv.InvoiceStatus {
		case types.InvoiceStatusDraft, types.InvoiceStatusSent:
		default:
			return nil, invoice.NewInvalidTransitionError(inv, "cancel")
		}
		return s.resolver.markCancelled(ctx, inv, s.now())
	})
}

// transition runs fn against the locked invoice and publishes its events after commit
func (s *invoiceService) transition(
	ctx context.Context,
	id string,
	fn func(ctx context.Context, inv *invoice.Invoice) ([]*events.Event, error),
) (*dto.InvoiceResponse, error) {
	var (
		inv *invoice.Invoice
		evs []*events.Event
	)

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.getOwnedInvoice(ctx, id, true)
		if err != nil {
			return err
		}
		evs, err = fn(ctx, inv)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, evs)

	s.Logger.Infow("invoice status changed",
		"invoice_id", inv.ID,
		"invoice_status", inv.InvoiceStatus,
	)

	return dto.NewInvoiceResponse(inv, s.now()), nil
}
