package ledger

import (
	"context"

	"github.com/finbooks/backend/internal/domain/audit"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/party"
)

// TransactionScope provides transactional access to the settlement repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll back
// atomically. Every mutating service operation runs inside one: a batch
// allocation either lands completely or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all settlement repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - DocumentRepo: Document aggregate root including its lines; lines are
//     persisted through the root, never independently.
//   - AllocationRepo: PaymentAllocation rows are a standalone entity because
//     each row bridges two aggregates (a payment and a document) and derived
//     balances on either side sum over them.
//   - PeriodRepo: AccountingPeriod rows; FindOrCreateForDate keeps lazy
//     creation race-free inside the transaction.
//   - PartyRepo: cross-context read access, used only to check that a
//     referenced party exists and is active.
//   - AuditRepo: append-only audit sink written in the same transaction as
//     the change it records.
//   - Sequences: the per-scope number counter, also transactional so a
//     rolled-back document does not burn a number in the same transaction.
type TransactionalRepositories interface {
	DocumentRepo() ledger.DocumentRepository
	PaymentRepo() ledger.PaymentRepository
	AllocationRepo() ledger.AllocationRepository
	PeriodRepo() ledger.AccountingPeriodRepository
	CashboxRepo() ledger.CashboxRepository
	BankAccountRepo() ledger.BankAccountRepository
	PartyRepo() party.PartyRepository
	AuditRepo() audit.Repository
	Sequences() ledger.SequenceGenerator
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests with in-memory repositories.
type NoOpTransactionScope struct {
	documentRepo    ledger.DocumentRepository
	paymentRepo     ledger.PaymentRepository
	allocationRepo  ledger.AllocationRepository
	periodRepo      ledger.AccountingPeriodRepository
	cashboxRepo     ledger.CashboxRepository
	bankAccountRepo ledger.BankAccountRepository
	partyRepo       party.PartyRepository
	auditRepo       audit.Repository
	sequences       ledger.SequenceGenerator
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(
	documentRepo ledger.DocumentRepository,
	paymentRepo ledger.PaymentRepository,
	allocationRepo ledger.AllocationRepository,
	periodRepo ledger.AccountingPeriodRepository,
	cashboxRepo ledger.CashboxRepository,
	bankAccountRepo ledger.BankAccountRepository,
	partyRepo party.PartyRepository,
	auditRepo audit.Repository,
	sequences ledger.SequenceGenerator,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		documentRepo:    documentRepo,
		paymentRepo:     paymentRepo,
		allocationRepo:  allocationRepo,
		periodRepo:      periodRepo,
		cashboxRepo:     cashboxRepo,
		bankAccountRepo: bankAccountRepo,
		partyRepo:       partyRepo,
		auditRepo:       auditRepo,
		sequences:       sequences,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) DocumentRepo() ledger.DocumentRepository { return s.documentRepo }

func (s *NoOpTransactionScope) PaymentRepo() ledger.PaymentRepository { return s.paymentRepo }

func (s *NoOpTransactionScope) AllocationRepo() ledger.AllocationRepository { return s.allocationRepo }

func (s *NoOpTransactionScope) PeriodRepo() ledger.AccountingPeriodRepository { return s.periodRepo }

func (s *NoOpTransactionScope) CashboxRepo() ledger.CashboxRepository { return s.cashboxRepo }

func (s *NoOpTransactionScope) BankAccountRepo() ledger.BankAccountRepository {
	return s.bankAccountRepo
}

func (s *NoOpTransactionScope) PartyRepo() party.PartyRepository { return s.partyRepo }

func (s *NoOpTransactionScope) AuditRepo() audit.Repository { return s.auditRepo }

func (s *NoOpTransactionScope) Sequences() ledger.SequenceGenerator { return s.sequences }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
