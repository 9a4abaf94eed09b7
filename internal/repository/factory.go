package repository

import (
	"github.com/flexprice/dunning/internal/domain/account"
	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/domain/payment"
	"github.com/flexprice/dunning/internal/domain/reminder"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/postgres"
	postgresRepo "github.com/flexprice/dunning/internal/repository/postgres"
)

func NewAccountRepository(db *postgres.DB, logger *logger.Logger) account.Repository {
	return postgresRepo.NewAccountRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewReminderRepository(db *postgres.DB, logger *logger.Logger) reminder.Repository {
	return postgresRepo.NewReminderRepository(db, logger)
}
