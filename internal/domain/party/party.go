package party

import (
	"fmt"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyType classifies the counterparty
type PartyType string

const (
	PartyTypeCustomer     PartyType = "CUSTOMER"
	PartyTypeSupplier     PartyType = "SUPPLIER"
	PartyTypeEmployee     PartyType = "EMPLOYEE"
	PartyTypeTaxAuthority PartyType = "TAX_AUTHORITY"
	PartyTypeBank         PartyType = "BANK"
	PartyTypeOther        PartyType = "OTHER"
)

// IsValid checks if the party type is valid
func (t PartyType) IsValid() bool {
	switch t {
	case PartyTypeCustomer, PartyTypeSupplier, PartyTypeEmployee,
		PartyTypeTaxAuthority, PartyTypeBank, PartyTypeOther:
		return true
	}
	return false
}

// String returns the string representation of PartyType
func (t PartyType) String() string {
	return string(t)
}

// Party is any counterparty a document or payment can reference. Parties are
// never hard-deleted: documents and payments keep pointing at them, so
// removal is a deactivation.
type Party struct {
	shared.CompanyAggregateRoot
	Code     string    `json:"code"` // Unique per company, auto-generated
	Type     PartyType `json:"type"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Address  string    `json:"address,omitempty"`
	TaxID    string    `json:"tax_id,omitempty"`
	Remark   string    `json:"remark,omitempty"`
	IsActive bool      `json:"is_active"`
}

// NewParty creates a new active party
func NewParty(companyID uuid.UUID, branchID *uuid.UUID, code string, partyType PartyType, name string) (*Party, error) {
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Party code cannot be empty")
	}
	if !partyType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Party type %q is not valid", partyType))
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Party name cannot be empty")
	}

	return &Party{
		CompanyAggregateRoot: shared.NewBranchAggregateRoot(companyID, branchID),
		Code:                 code,
		Type:                 partyType,
		Name:                 name,
		IsActive:             true,
	}, nil
}

// UpdateContact updates the contact fields
func (p *Party) UpdateContact(email, phone, address string) {
	p.Email = email
	p.Phone = phone
	p.Address = address
	p.Touch()
	p.IncrementVersion()
}

// Rename changes the display name
func (p *Party) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Party name cannot be empty")
	}
	p.Name = name
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Deactivate marks the party as inactive; existing documents keep referencing it
func (p *Party) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError(shared.CodeInvalidStatus,
			fmt.Sprintf("Party %s is already inactive", p.Code))
	}
	p.IsActive = false
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Activate re-enables an inactive party
func (p *Party) Activate() error {
	if p.IsActive {
		return shared.NewDomainError(shared.CodeInvalidStatus,
			fmt.Sprintf("Party %s is already active", p.Code))
	}
	p.IsActive = true
	p.Touch()
	p.IncrementVersion()
	return nil
}

// BalanceSummary holds a party's derived position: sums of unpaid amounts
// over its documents by direction. Net = receivable - payable.
type BalanceSummary struct {
	PartyID           uuid.UUID       `json:"party_id"`
	ReceivableBalance decimal.Decimal `json:"receivable_balance"`
	PayableBalance    decimal.Decimal `json:"payable_balance"`
	NetBalance        decimal.Decimal `json:"net_balance"`
}

// NewBalanceSummary builds a summary from the two directional sums
func NewBalanceSummary(partyID uuid.UUID, receivable, payable decimal.Decimal) BalanceSummary {
	return BalanceSummary{
		PartyID:           partyID,
		ReceivableBalance: receivable,
		PayableBalance:    payable,
		NetBalance:        receivable.Sub(payable),
	}
}
