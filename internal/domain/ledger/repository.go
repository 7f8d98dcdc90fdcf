package ledger

import (
	"context"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentFilter defines filtering options for document queries
type DocumentFilter struct {
	shared.Filter
	PartyID   *uuid.UUID
	Type      *DocumentType
	Direction *DocumentDirection
	Status    *DocumentStatus
	Statuses  []DocumentStatus
	FromDate  *time.Time
	ToDate    *time.Time
	DueFrom   *time.Time
	DueTo     *time.Time
	Overdue   *bool
}

// DocumentRepository defines the interface for document persistence
type DocumentRepository interface {
	// FindByID finds a document by ID, nil if missing
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindByIDForCompany finds a document by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Document, error)

	// FindByNumber finds by document number for a company
	FindByNumber(ctx context.Context, companyID uuid.UUID, number string) (*Document, error)

	// FindAllForCompany finds documents for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter DocumentFilter) ([]Document, error)

	// FindOutstandingByParty finds PENDING/PARTIAL documents of a party
	FindOutstandingByParty(ctx context.Context, companyID, partyID uuid.UUID) ([]Document, error)

	// Save creates or updates a document including its lines
	Save(ctx context.Context, doc *Document) error

	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, doc *Document) error

	// CountForCompany counts documents for a company with optional filters
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter DocumentFilter) (int64, error)

	// SumUnpaidByParty sums unpaid amounts over a party's documents in the
	// given direction, derived from active allocations
	SumUnpaidByParty(ctx context.Context, companyID, partyID uuid.UUID, direction DocumentDirection) (decimal.Decimal, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	PartyID   *uuid.UUID
	Type      *PaymentType
	Direction *PaymentDirection
	Status    *PaymentStatus
	FromDate  *time.Time
	ToDate    *time.Time
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID, nil if missing
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDForCompany finds a payment by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Payment, error)

	// FindByNumber finds by payment number for a company
	FindByNumber(ctx context.Context, companyID uuid.UUID, number string) (*Payment, error)

	// FindAllForCompany finds payments for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// CountForCompany counts payments for a company with optional filters
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter PaymentFilter) (int64, error)

	// CashboxBalance derives a cashbox balance: confirmed inbound payments
	// minus confirmed outbound payments touching the cashbox, transfer legs
	// counted on each side
	CashboxBalance(ctx context.Context, companyID, cashboxID uuid.UUID) (decimal.Decimal, error)

	// BankAccountBalance derives a bank account balance the same way
	BankAccountBalance(ctx context.Context, companyID, bankAccountID uuid.UUID) (decimal.Decimal, error)
}

// AllocationRepository defines the interface for allocation persistence.
// Allocations are append-then-flip records: rows are inserted ACTIVE and only
// ever updated to CANCELLED, never deleted.
type AllocationRepository interface {
	// FindByID finds an allocation by ID, nil if missing
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentAllocation, error)

	// FindActiveByDocument returns the ACTIVE allocations targeting a document
	FindActiveByDocument(ctx context.Context, documentID uuid.UUID) ([]PaymentAllocation, error)

	// FindActiveByPayment returns the ACTIVE allocations drawn on a payment
	FindActiveByPayment(ctx context.Context, paymentID uuid.UUID) ([]PaymentAllocation, error)

	// FindByPayment returns all allocations of a payment regardless of status
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]PaymentAllocation, error)

	// Save creates or updates an allocation
	Save(ctx context.Context, allocation *PaymentAllocation) error
}

// AccountingPeriodRepository defines the interface for period persistence
type AccountingPeriodRepository interface {
	// FindByID finds a period by ID, nil if missing
	FindByID(ctx context.Context, id uuid.UUID) (*AccountingPeriod, error)

	// FindByMonth finds the period for (company, year, month), nil if missing
	FindByMonth(ctx context.Context, companyID uuid.UUID, year int, month time.Month) (*AccountingPeriod, error)

	// FindOrCreateForDate resolves the period covering the date, lazily
	// creating an OPEN one. Creation is idempotent: concurrent callers for
	// the same company+month always converge on a single row.
	FindOrCreateForDate(ctx context.Context, companyID uuid.UUID, date time.Time) (*AccountingPeriod, error)

	// FindAllForCompany lists periods for a company
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]AccountingPeriod, error)

	// Save creates or updates a period
	Save(ctx context.Context, period *AccountingPeriod) error

	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, period *AccountingPeriod) error
}

// CashboxRepository defines the interface for cashbox persistence
type CashboxRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cashbox, error)
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Cashbox, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Cashbox, error)
	Save(ctx context.Context, cashbox *Cashbox) error
}

// BankAccountRepository defines the interface for bank account persistence
type BankAccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BankAccount, error)
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*BankAccount, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]BankAccount, error)
	Save(ctx context.Context, account *BankAccount) error
}

// AttachmentRepository defines the interface for attachment persistence
type AttachmentRepository interface {
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Attachment, error)

	// FindByOwner lists non-deleted attachments of a document or payment
	FindByOwner(ctx context.Context, companyID uuid.UUID, ownerType AttachmentOwnerType, ownerID uuid.UUID) ([]Attachment, error)

	// CountActiveByOwner counts pending and active attachments of an owner
	CountActiveByOwner(ctx context.Context, companyID uuid.UUID, ownerType AttachmentOwnerType, ownerID uuid.UUID) (int64, error)

	Save(ctx context.Context, attachment *Attachment) error

	// DeleteForCompany removes the attachment row permanently
	DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error
}
