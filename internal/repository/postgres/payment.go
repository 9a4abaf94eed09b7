package postgres

import (
	"context"

	"github.com/flexprice/dunning/internal/domain/payment"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/postgres"
	"github.com/flexprice/dunning/internal/types"
	"github.com/lib/pq"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewPaymentRepository creates a new instance of payment repository
func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

const paymentColumns = `id, invoice_id, amount, currency, payment_date, payment_method_type, notes,
	status, created_at, updated_at, created_by, updated_by`

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES (:id, :invoice_id, :amount, :currency, :payment_date, :payment_method_type, :notes,
			:status, :created_at, :updated_at, :created_by, :updated_by)`

	r.logger.Debugw("creating payment",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"amount", p.Amount,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p); err != nil {
		return translateError(err, "payment", p.ID)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND status = $2`

	var p payment.Payment
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id, types.StatusPublished); err != nil {
		return nil, translateError(err, "payment", id)
	}
	return &p, nil
}

func (r *paymentRepository) Delete(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments
		SET
			status = $2,
			updated_at = $3,
			updated_by = $4
		WHERE id = $1
		AND status = $5`

	r.logger.Debugw("deleting payment",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
	)

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		p.ID, types.StatusDeleted, p.UpdatedAt, p.UpdatedBy, types.StatusPublished)
	if err != nil {
		return translateError(err, "payment", p.ID)
	}
	return requireAffected(result, "payment", p.ID)
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	if filter == nil {
		filter = types.NewNoLimitPaymentFilter()
	}

	conds := newConditions().add("status = ?", types.StatusPublished)
	if filter.InvoiceID != "" {
		conds.add("invoice_id = ?", filter.InvoiceID)
	}
	if len(filter.PaymentIDs) > 0 {
		conds.add("id = ANY(?)", pq.Array(filter.PaymentIDs))
	}
	query := `SELECT ` + paymentColumns + ` FROM payments` + conds.where() +
		` ORDER BY payment_date ASC, created_at ASC` + conds.paginate(filter)

	var payments []*payment.Payment
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &payments, query, conds.args...); err != nil {
		return nil, translateError(err, "payment", "")
	}
	return payments, nil
}
