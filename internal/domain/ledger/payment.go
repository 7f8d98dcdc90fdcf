package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentDirection indicates whether money flows into or out of the company
type PaymentDirection string

const (
	PaymentDirectionIn  PaymentDirection = "IN"
	PaymentDirectionOut PaymentDirection = "OUT"
)

// IsValid checks if the direction is a valid PaymentDirection
func (d PaymentDirection) IsValid() bool {
	return d == PaymentDirectionIn || d == PaymentDirectionOut
}

// String returns the string representation of PaymentDirection
func (d PaymentDirection) String() string {
	return string(d)
}

// Matches reports whether a payment in this direction may settle a document
// in the given direction: IN settles RECEIVABLE, OUT settles PAYABLE.
func (d PaymentDirection) Matches(docDirection DocumentDirection) bool {
	switch docDirection {
	case DirectionReceivable:
		return d == PaymentDirectionIn
	case DirectionPayable:
		return d == PaymentDirectionOut
	}
	return false
}

// PaymentType classifies the cash/bank movement
type PaymentType string

const (
	PaymentTypeCashIn   PaymentType = "CASH_IN"
	PaymentTypeCashOut  PaymentType = "CASH_OUT"
	PaymentTypeBankIn   PaymentType = "BANK_IN"
	PaymentTypeBankOut  PaymentType = "BANK_OUT"
	PaymentTypePOSIn    PaymentType = "POS_IN"
	PaymentTypeTransfer PaymentType = "TRANSFER"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeCashIn, PaymentTypeCashOut, PaymentTypeBankIn,
		PaymentTypeBankOut, PaymentTypePOSIn, PaymentTypeTransfer:
		return true
	}
	return false
}

// String returns the string representation of PaymentType
func (t PaymentType) String() string {
	return string(t)
}

// RequiredDirection returns the direction this payment type mandates.
// Transfers have no fixed direction and return false.
func (t PaymentType) RequiredDirection() (PaymentDirection, bool) {
	switch t {
	case PaymentTypeCashIn, PaymentTypeBankIn, PaymentTypePOSIn:
		return PaymentDirectionIn, true
	case PaymentTypeCashOut, PaymentTypeBankOut:
		return PaymentDirectionOut, true
	}
	return "", false
}

// NumberPrefix returns the payment-number prefix for this type:
// the first three letters of the type name, uppercased.
func (t PaymentType) NumberPrefix() string {
	s := strings.ToUpper(string(t))
	if len(s) < 3 {
		return s
	}
	return s[:3]
}

// PaymentStatus represents the lifecycle state of a payment.
// CONFIRMED is the single canonical "usable for allocation" state.
type PaymentStatus string

const (
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusConfirmed || s == PaymentStatusCancelled
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanAllocate returns true if allocations can be made against this status
func (s PaymentStatus) CanAllocate() bool {
	return s == PaymentStatusConfirmed
}

// PaymentSources holds the cashbox/bank-account references of a payment.
// Plain payments populate CashboxID or BankAccountID; transfers populate one
// From and one To reference.
type PaymentSources struct {
	CashboxID         *uuid.UUID `json:"cashbox_id,omitempty"`
	BankAccountID     *uuid.UUID `json:"bank_account_id,omitempty"`
	FromCashboxID     *uuid.UUID `json:"from_cashbox_id,omitempty"`
	ToCashboxID       *uuid.UUID `json:"to_cashbox_id,omitempty"`
	FromBankAccountID *uuid.UUID `json:"from_bank_account_id,omitempty"`
	ToBankAccountID   *uuid.UUID `json:"to_bank_account_id,omitempty"`
}

// OutflowSources returns the funding references that must cover an outflow:
// the direct source for plain payments, the From leg for transfers.
func (s PaymentSources) OutflowSources() (cashboxes, bankAccounts []uuid.UUID) {
	if s.CashboxID != nil {
		cashboxes = append(cashboxes, *s.CashboxID)
	}
	if s.FromCashboxID != nil {
		cashboxes = append(cashboxes, *s.FromCashboxID)
	}
	if s.BankAccountID != nil {
		bankAccounts = append(bankAccounts, *s.BankAccountID)
	}
	if s.FromBankAccountID != nil {
		bankAccounts = append(bankAccounts, *s.FromBankAccountID)
	}
	return cashboxes, bankAccounts
}

// ValidatePaymentSources enforces the fixed payment_type/direction/source table:
//
//	CASH_IN   IN   cashbox_id
//	CASH_OUT  OUT  cashbox_id
//	BANK_IN   IN   bank_account_id
//	BANK_OUT  OUT  bank_account_id
//	POS_IN    IN   bank_account_id
//	TRANSFER  any  one of {from_cashbox_id, from_bank_account_id}
//	               and one of {to_cashbox_id, to_bank_account_id}
func ValidatePaymentSources(paymentType PaymentType, direction PaymentDirection, sources PaymentSources) error {
	if !paymentType.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidPaymentType,
			fmt.Sprintf("Unknown payment type %q", paymentType))
	}
	if !direction.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidPaymentType,
			fmt.Sprintf("Unknown payment direction %q", direction))
	}

	if required, fixed := paymentType.RequiredDirection(); fixed && direction != required {
		return shared.NewDomainError(shared.CodeInvalidPaymentType,
			fmt.Sprintf("Payment type %s requires direction %s, got %s", paymentType, required, direction))
	}

	switch paymentType {
	case PaymentTypeCashIn, PaymentTypeCashOut:
		if sources.CashboxID == nil {
			return shared.NewDomainError(shared.CodeInvalidPaymentType,
				fmt.Sprintf("Payment type %s requires a cashbox", paymentType))
		}
	case PaymentTypeBankIn, PaymentTypeBankOut, PaymentTypePOSIn:
		if sources.BankAccountID == nil {
			return shared.NewDomainError(shared.CodeInvalidPaymentType,
				fmt.Sprintf("Payment type %s requires a bank account", paymentType))
		}
	case PaymentTypeTransfer:
		if sources.FromCashboxID == nil && sources.FromBankAccountID == nil {
			return shared.NewDomainError(shared.CodeInvalidPaymentType,
				"Transfer requires a source cashbox or bank account")
		}
		if sources.ToCashboxID == nil && sources.ToBankAccountID == nil {
			return shared.NewDomainError(shared.CodeInvalidPaymentType,
				"Transfer requires a destination cashbox or bank account")
		}
	}

	return nil
}

// Payment represents a cash/bank/transfer movement. Allocated/unallocated
// balances are never stored; they are derived from active allocations.
type Payment struct {
	shared.CompanyAggregateRoot
	PaymentNumber string           `json:"payment_number"`
	Type          PaymentType      `json:"type"`
	Direction     PaymentDirection `json:"direction"`
	Status        PaymentStatus    `json:"status"`
	PartyID       *uuid.UUID       `json:"party_id,omitempty"` // Nil for internal transfers
	Sources       PaymentSources   `json:"sources"`
	PaymentDate   time.Time        `json:"payment_date"`
	PeriodYear    int              `json:"period_year"`
	PeriodMonth   time.Month       `json:"period_month"`
	Amount        decimal.Decimal  `json:"amount"`
	Description   string           `json:"description"`
	Reference     string           `json:"reference,omitempty"` // Bank txn id, cheque number
}

// NewPayment creates a new confirmed payment after validating the
// type/direction/source combination.
func NewPayment(
	companyID uuid.UUID,
	branchID *uuid.UUID,
	paymentNumber string,
	paymentType PaymentType,
	direction PaymentDirection,
	partyID *uuid.UUID,
	sources PaymentSources,
	paymentDate time.Time,
	amount valueobject.Money,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment number cannot be empty")
	}
	if len(paymentNumber) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment number cannot exceed 50 characters")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment date is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	if err := ValidatePaymentSources(paymentType, direction, sources); err != nil {
		return nil, err
	}
	if partyID == nil && paymentType != PaymentTypeTransfer {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Payment type %s requires a party", paymentType))
	}

	p := &Payment{
		CompanyAggregateRoot: shared.NewBranchAggregateRoot(companyID, branchID),
		PaymentNumber:        paymentNumber,
		Type:                 paymentType,
		Direction:            direction,
		Status:               PaymentStatusConfirmed,
		PartyID:              partyID,
		Sources:              sources,
		PaymentDate:          paymentDate,
		PeriodYear:           paymentDate.Year(),
		PeriodMonth:          paymentDate.Month(),
		Amount:               amount.Amount(),
	}

	p.AddDomainEvent(NewPaymentRecordedEvent(p))

	return p, nil
}

// AmountMoney returns the payment amount as Money
func (p *Payment) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyAmount(p.Amount)
}
