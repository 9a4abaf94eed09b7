package postgres

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/domain/reminder"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/postgres"
	"github.com/flexprice/dunning/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type reminderRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewReminderRepository creates a new instance of reminder record repository
func NewReminderRepository(db *postgres.DB, logger *logger.Logger) reminder.Repository {
	return &reminderRepository{
		db:     db,
		logger: logger,
	}
}

const reminderColumns = `id, invoice_id, account_id, kind, reminder_status, overdue_days, external_message_id,
	failure_reason, failure_detail, attempts, manual, sent_at, status, created_at, updated_at, created_by, updated_by`

func (r *reminderRepository) Create(ctx context.Context, rec *reminder.Record) error {
	query := `
		INSERT INTO reminder_records (` + reminderColumns + `)
		VALUES (:id, :invoice_id, :account_id, :kind, :reminder_status, :overdue_days, :external_message_id,
			:failure_reason, :failure_detail, :attempts, :manual, :sent_at, :status, :created_at, :updated_at,
			:created_by, :updated_by)`

	r.logger.Debugw("creating reminder record",
		"record_id", rec.ID,
		"invoice_id", rec.InvoiceID,
		"kind", rec.Kind,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, rec); err != nil {
		return translateError(err, "reminder record", rec.ID)
	}
	return nil
}

func (r *reminderRepository) Get(ctx context.Context, id string) (*reminder.Record, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminder_records WHERE id = $1`

	var rec reminder.Record
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &rec, query, id); err != nil {
		return nil, translateError(err, "reminder record", id)
	}
	return &rec, nil
}

func (r *reminderRepository) Update(ctx context.Context, rec *reminder.Record) error {
	query := `
		UPDATE reminder_records
		SET
			reminder_status = :reminder_status,
			overdue_days = :overdue_days,
			external_message_id = :external_message_id,
			failure_reason = :failure_reason,
			failure_detail = :failure_detail,
			attempts = :attempts,
			manual = :manual,
			sent_at = :sent_at,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, rec)
	if err != nil {
		return translateError(err, "reminder record", rec.ID)
	}
	return requireAffected(result, "reminder record", rec.ID)
}

func (r *reminderRepository) List(ctx context.Context, filter *types.ReminderRecordFilter) ([]*reminder.Record, error) {
	conds := newConditions().add("status = ?", types.StatusPublished)
	if filter != nil {
		if filter.InvoiceID != "" {
			conds.add("invoice_id = ?", filter.InvoiceID)
		}
		if len(filter.Kinds) > 0 {
			conds.add("kind = ANY(?)", pq.Array(lo.Map(filter.Kinds, func(k types.ReminderKind, _ int) string {
				return string(k)
			})))
		}
		if len(filter.ReminderStatus) > 0 {
			conds.add("reminder_status = ANY(?)", pq.Array(lo.Map(filter.ReminderStatus, func(s types.ReminderStatus, _ int) string {
				return string(s)
			})))
		}
	}
	query := `SELECT ` + reminderColumns + ` FROM reminder_records` + conds.where() +
		` ORDER BY created_at DESC, updated_at DESC`

	var records []*reminder.Record
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &records, query, conds.args...); err != nil {
		return nil, translateError(err, "reminder record", "")
	}
	return records, nil
}

func (r *reminderRepository) CancelScheduled(ctx context.Context, invoiceID string, reason types.ReminderFailureReason, at time.Time) ([]*reminder.Record, error) {
	query := `
		UPDATE reminder_records
		SET
			reminder_status = $2,
			failure_reason = $3,
			updated_at = $4,
			updated_by = $5
		WHERE invoice_id = $1
		AND reminder_status = $6
		RETURNING ` + reminderColumns

	r.logger.Debugw("cancelling scheduled reminders",
		"invoice_id", invoiceID,
		"reason", reason,
	)

	var records []*reminder.Record
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &records, query,
		invoiceID,
		types.ReminderStatusCancelled,
		reason,
		at,
		types.GetUserID(ctx),
		types.ReminderStatusScheduled,
	)
	if err != nil {
		return nil, translateError(err, "reminder record", invoiceID)
	}
	return records, nil
}
