package ledger

import (
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationStatus represents the state of a settlement link.
// The transition ACTIVE -> CANCELLED is one-way; allocations are never
// physically deleted so the audit trail stays intact and derived sums can
// simply filter on ACTIVE.
type AllocationStatus string

const (
	AllocationStatusActive    AllocationStatus = "ACTIVE"
	AllocationStatusCancelled AllocationStatus = "CANCELLED"
)

// IsValid checks if the status is a valid AllocationStatus
func (s AllocationStatus) IsValid() bool {
	return s == AllocationStatusActive || s == AllocationStatusCancelled
}

// String returns the string representation of AllocationStatus
func (s AllocationStatus) String() string {
	return string(s)
}

// PaymentAllocation links a payment to a document it settles (fully or in part)
type PaymentAllocation struct {
	shared.BaseEntity
	PaymentID      uuid.UUID        `json:"payment_id"`
	DocumentID     uuid.UUID        `json:"document_id"`
	Amount         decimal.Decimal  `json:"amount"`
	AllocationDate time.Time        `json:"allocation_date"`
	Status         AllocationStatus `json:"status"`
	Notes          string           `json:"notes,omitempty"`
	CreatedBy      uuid.UUID        `json:"created_by"`
	CancelledAt    *time.Time       `json:"cancelled_at,omitempty"`
	CancelledBy    *uuid.UUID       `json:"cancelled_by,omitempty"`
}

// NewPaymentAllocation creates an active allocation of the given amount
func NewPaymentAllocation(
	paymentID, documentID uuid.UUID,
	amount valueobject.Money,
	allocationDate time.Time,
	notes string,
	createdBy uuid.UUID,
) (*PaymentAllocation, error) {
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment ID cannot be empty")
	}
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Document ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Allocation amount must be positive")
	}
	if allocationDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Allocation date is required")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Creating actor ID is required")
	}

	return &PaymentAllocation{
		BaseEntity:     shared.NewBaseEntity(),
		PaymentID:      paymentID,
		DocumentID:     documentID,
		Amount:         amount.Amount(),
		AllocationDate: allocationDate,
		Status:         AllocationStatusActive,
		Notes:          notes,
		CreatedBy:      createdBy,
	}, nil
}

// IsActive returns true if the allocation still counts toward derived balances
func (a *PaymentAllocation) IsActive() bool {
	return a.Status == AllocationStatusActive
}

// Cancel soft-cancels the allocation. Cancelling an already cancelled
// allocation is rejected so derived sums can never double-subtract.
func (a *PaymentAllocation) Cancel(actorID uuid.UUID) error {
	if a.Status == AllocationStatusCancelled {
		return shared.NewDomainError(shared.CodeInvalidStatus,
			fmt.Sprintf("Allocation %s is already cancelled", a.ID))
	}
	if actorID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Cancelling actor ID is required")
	}

	now := time.Now()
	a.Status = AllocationStatusCancelled
	a.CancelledAt = &now
	a.CancelledBy = &actorID
	a.Touch()

	return nil
}

// AmountMoney returns the allocation amount as Money
func (a *PaymentAllocation) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyAmount(a.Amount)
}
