package persistence

import (
	"context"

	appledger "github.com/finbooks/backend/internal/application/ledger"
	"github.com/finbooks/backend/internal/domain/audit"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/party"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// DocumentRepo returns the document repository scoped to the current transaction.
func (r *gormTransactionalRepositories) DocumentRepo() ledger.DocumentRepository {
	return NewGormDocumentRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentRepo() ledger.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// AllocationRepo returns the allocation repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AllocationRepo() ledger.AllocationRepository {
	return NewGormAllocationRepository(r.tx)
}

// PeriodRepo returns the accounting period repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PeriodRepo() ledger.AccountingPeriodRepository {
	return NewGormAccountingPeriodRepository(r.tx)
}

// CashboxRepo returns the cashbox repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CashboxRepo() ledger.CashboxRepository {
	return NewGormCashboxRepository(r.tx)
}

// BankAccountRepo returns the bank account repository scoped to the current transaction.
func (r *gormTransactionalRepositories) BankAccountRepo() ledger.BankAccountRepository {
	return NewGormBankAccountRepository(r.tx)
}

// PartyRepo returns the party repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PartyRepo() party.PartyRepository {
	return NewGormPartyRepository(r.tx)
}

// AuditRepo returns the audit repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AuditRepo() audit.Repository {
	return NewGormAuditRepository(r.tx)
}

// Sequences returns the sequence generator scoped to the current transaction.
func (r *gormTransactionalRepositories) Sequences() ledger.SequenceGenerator {
	return NewGormSequenceGenerator(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
