package postgres

import (
	"context"

	"github.com/flexprice/dunning/internal/domain/account"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/postgres"
	"github.com/flexprice/dunning/internal/types"
)

type accountRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewAccountRepository creates a new instance of account repository
func NewAccountRepository(db *postgres.DB, logger *logger.Logger) account.Repository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

const accountColumns = `id, name, plan, account_status, reminder_from_address, reminder_reply_to,
	status, created_at, updated_at, created_by, updated_by`

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (:id, :name, :plan, :account_status, :reminder_from_address, :reminder_reply_to,
			:status, :created_at, :updated_at, :created_by, :updated_by)`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, a); err != nil {
		return translateError(err, "account", a.ID)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND status = $2`

	var a account.Account
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &a, query, id, types.StatusPublished); err != nil {
		return nil, translateError(err, "account", id)
	}
	return &a, nil
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	query := `
		UPDATE accounts
		SET
			name = :name,
			plan = :plan,
			account_status = :account_status,
			reminder_from_address = :reminder_from_address,
			reminder_reply_to = :reminder_reply_to,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND status = 'published'`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, a)
	if err != nil {
		return translateError(err, "account", a.ID)
	}
	return requireAffected(result, "account", a.ID)
}

func (r *accountRepository) ListActive(ctx context.Context) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status = $1 AND account_status = $2 ORDER BY created_at ASC`

	var accounts []*account.Account
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &accounts, query, types.StatusPublished, types.AccountStatusActive); err != nil {
		return nil, translateError(err, "account", "")
	}
	return accounts, nil
}
