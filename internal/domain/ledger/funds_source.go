package ledger

import (
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Cashbox is a physical cash drawer or petty-cash box. Its balance is not
// stored: it is the derived sum of confirmed payments touching it.
type Cashbox struct {
	shared.CompanyAggregateRoot
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// NewCashbox creates a new active cashbox
func NewCashbox(companyID uuid.UUID, branchID *uuid.UUID, code, name string) (*Cashbox, error) {
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Cashbox code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Cashbox name cannot be empty")
	}
	return &Cashbox{
		CompanyAggregateRoot: shared.NewBranchAggregateRoot(companyID, branchID),
		Code:                 code,
		Name:                 name,
		IsActive:             true,
	}, nil
}

// Deactivate marks the cashbox as unusable for new payments
func (c *Cashbox) Deactivate() {
	c.IsActive = false
	c.Touch()
	c.IncrementVersion()
}

// BankAccount is a bank account the company pays from and into. As with
// cashboxes, the balance is derived from confirmed payments.
type BankAccount struct {
	shared.CompanyAggregateRoot
	Code          string `json:"code"`
	Name          string `json:"name"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IBAN          string `json:"iban,omitempty"`
	IsActive      bool   `json:"is_active"`
}

// NewBankAccount creates a new active bank account
func NewBankAccount(companyID uuid.UUID, branchID *uuid.UUID, code, name, bankName, accountNumber string) (*BankAccount, error) {
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Bank account code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Bank account name cannot be empty")
	}
	if accountNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Account number cannot be empty")
	}
	return &BankAccount{
		CompanyAggregateRoot: shared.NewBranchAggregateRoot(companyID, branchID),
		Code:                 code,
		Name:                 name,
		BankName:             bankName,
		AccountNumber:        accountNumber,
		IsActive:             true,
	}, nil
}

// Deactivate marks the bank account as unusable for new payments
func (b *BankAccount) Deactivate() {
	b.IsActive = false
	b.Touch()
	b.IncrementVersion()
}
