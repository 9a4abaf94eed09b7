package postgres

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/postgres"
	"github.com/flexprice/dunning/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewInvoiceRepository creates a new instance of invoice repository
func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

const invoiceColumns = `id, account_id, invoice_number, customer_name, customer_email, currency, total, due_date,
	invoice_status, paid_source, late_fee_policy, reminder_policy, reminder_count, last_reminder_sent_at,
	sent_at, paid_at, cancelled_at, status, created_at, updated_at, created_by, updated_by`

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (:id, :account_id, :invoice_number, :customer_name, :customer_email, :currency, :total, :due_date,
			:invoice_status, :paid_source, :late_fee_policy, :reminder_policy, :reminder_count, :last_reminder_sent_at,
			:sent_at, :paid_at, :cancelled_at, :status, :created_at, :updated_at, :created_by, :updated_by)`

	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"account_id", inv.AccountID,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, inv); err != nil {
		return translateError(err, "invoice", inv.ID)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	return r.get(ctx, id, false)
}

func (r *invoiceRepository) GetForUpdate(ctx context.Context, id string) (*invoice.Invoice, error) {
	return r.get(ctx, id, r.db.InTx(ctx))
}

func (r *invoiceRepository) get(ctx context.Context, id string, lock bool) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND status = $2`
	if lock {
		query += ` FOR UPDATE`
	}

	var inv invoice.Invoice
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, id, types.StatusPublished); err != nil {
		return nil, translateError(err, "invoice", id)
	}
	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET
			customer_name = :customer_name,
			customer_email = :customer_email,
			total = :total,
			due_date = :due_date,
			invoice_status = :invoice_status,
			paid_source = :paid_source,
			late_fee_policy = :late_fee_policy,
			reminder_policy = :reminder_policy,
			sent_at = :sent_at,
			paid_at = :paid_at,
			cancelled_at = :cancelled_at,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND status = 'published'`

	r.logger.Debugw("updating invoice",
		"invoice_id", inv.ID,
		"invoice_status", inv.InvoiceStatus,
	)

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, inv)
	if err != nil {
		return translateError(err, "invoice", inv.ID)
	}
	return requireAffected(result, "invoice", inv.ID)
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}
	conds := r.conditions(filter)
	order := "ASC"
	if filter.QueryFilter != nil && filter.GetOrder() == types.OrderDesc {
		order = "DESC"
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + conds.where() +
		` ORDER BY due_date ` + order + `, id ` + order + conds.paginate(filter)

	var invoices []*invoice.Invoice
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, conds.args...); err != nil {
		return nil, translateError(err, "invoice", "")
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}
	conds := r.conditions(filter)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, `SELECT COUNT(*) FROM invoices`+conds.where(), conds.args...); err != nil {
		return 0, translateError(err, "invoice", "")
	}
	return count, nil
}

func (r *invoiceRepository) IncrementReminderCount(ctx context.Context, id string, sentAt time.Time) error {
	query := `
		UPDATE invoices
		SET
			reminder_count = reminder_count + 1,
			last_reminder_sent_at = $2,
			updated_at = $2
		WHERE id = $1
		AND status = 'published'`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id, sentAt)
	if err != nil {
		return translateError(err, "invoice", id)
	}
	return requireAffected(result, "invoice", id)
}

func (r *invoiceRepository) conditions(filter *types.InvoiceFilter) *conditions {
	conds := newConditions().add("status = ?", types.StatusPublished)
	if len(filter.InvoiceIDs) > 0 {
		conds.add("id = ANY(?)", pq.Array(filter.InvoiceIDs))
	}
	if filter.AccountID != "" {
		conds.add("account_id = ?", filter.AccountID)
	}
	if len(filter.InvoiceStatus) > 0 {
		conds.add("invoice_status = ANY(?)", pq.Array(lo.Map(filter.InvoiceStatus, func(s types.InvoiceStatus, _ int) string {
			return string(s)
		})))
	}
	if filter.DueBefore != nil {
		conds.add("due_date < ?", *filter.DueBefore)
	}
	if filter.RemindersOnly {
		conds.add("(reminder_policy->>'enabled')::boolean = ?", true)
	}
	return conds
}
