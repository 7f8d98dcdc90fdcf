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

// DocumentDirection indicates which way the obligation flows
type DocumentDirection string

const (
	DirectionReceivable DocumentDirection = "RECEIVABLE" // Money owed to us
	DirectionPayable    DocumentDirection = "PAYABLE"    // Money we owe
)

// IsValid checks if the direction is a valid DocumentDirection
func (d DocumentDirection) IsValid() bool {
	return d == DirectionReceivable || d == DirectionPayable
}

// String returns the string representation of DocumentDirection
func (d DocumentDirection) String() string {
	return string(d)
}

// Opposite returns the opposite direction
func (d DocumentDirection) Opposite() DocumentDirection {
	if d == DirectionReceivable {
		return DirectionPayable
	}
	return DirectionReceivable
}

// DocumentType classifies the obligation
type DocumentType string

const (
	DocumentTypeCustomerInvoice DocumentType = "CUSTOMER_INVOICE"
	DocumentTypeSupplierInvoice DocumentType = "SUPPLIER_INVOICE"
	DocumentTypeSalary          DocumentType = "SALARY"
	DocumentTypeOvertime        DocumentType = "OVERTIME"
	DocumentTypeAdvance         DocumentType = "ADVANCE"
	DocumentTypeReversal        DocumentType = "REVERSAL"
)

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeCustomerInvoice, DocumentTypeSupplierInvoice, DocumentTypeSalary,
		DocumentTypeOvertime, DocumentTypeAdvance, DocumentTypeReversal:
		return true
	}
	return false
}

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// NumberPrefix returns the document-number prefix for this type:
// the first three letters of the type name, uppercased.
func (t DocumentType) NumberPrefix() string {
	s := strings.ToUpper(string(t))
	if len(s) < 3 {
		return s
	}
	return s[:3]
}

// DocumentStatus represents the settlement state of a document
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "PENDING"   // No active allocations
	DocumentStatusPartial   DocumentStatus = "PARTIAL"   // 0 < paid < total
	DocumentStatusSettled   DocumentStatus = "SETTLED"   // paid == total
	DocumentStatusReversed  DocumentStatus = "REVERSED"  // Neutralized by a reversal document
	DocumentStatusCancelled DocumentStatus = "CANCELLED" // Cancelled before settlement
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusPartial, DocumentStatusSettled,
		DocumentStatusReversed, DocumentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the document is in a terminal state
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusSettled || s == DocumentStatusReversed || s == DocumentStatusCancelled
}

// CanAcceptAllocation returns true if allocations may target a document in this status
func (s DocumentStatus) CanAcceptAllocation() bool {
	return s == DocumentStatusPending || s == DocumentStatusPartial
}

// Document represents an obligation (invoice/accrual) owed by or to a Party.
// Paid/unpaid balances are never stored on the document; they are derived
// from active allocations (see balance.go).
type Document struct {
	shared.CompanyAggregateRoot
	DocumentNumber       string            `json:"document_number"`
	Type                 DocumentType      `json:"type"`
	Direction            DocumentDirection `json:"direction"`
	Status               DocumentStatus    `json:"status"`
	PartyID              uuid.UUID         `json:"party_id"`
	DocumentDate         time.Time         `json:"document_date"`
	DueDate              time.Time         `json:"due_date"`
	PeriodYear           int               `json:"period_year"`
	PeriodMonth          time.Month        `json:"period_month"`
	TotalAmount          decimal.Decimal   `json:"total_amount"`
	Description          string            `json:"description"`
	Lines                []DocumentLine    `json:"lines,omitempty"`
	ReversesDocumentID   *uuid.UUID        `json:"reverses_document_id,omitempty"`    // Set on the reversal
	ReversedByDocumentID *uuid.UUID        `json:"reversed_by_document_id,omitempty"` // Set on the original
	ReversedAt           *time.Time        `json:"reversed_at,omitempty"`
	ReversalReason       string            `json:"reversal_reason,omitempty"`
	CancelledAt          *time.Time        `json:"cancelled_at,omitempty"`
	CancelReason         string            `json:"cancel_reason,omitempty"`
}

// lineTotalTolerance is the maximum accepted drift between a caller-supplied
// total and the sum of line totals before the stored total is overwritten.
var lineTotalTolerance = decimal.NewFromFloat(0.01)

// NewDocument creates a new document in PENDING status. The accounting period
// fields are derived from the document date at creation time.
func NewDocument(
	companyID uuid.UUID,
	branchID *uuid.UUID,
	documentNumber string,
	docType DocumentType,
	direction DocumentDirection,
	partyID uuid.UUID,
	documentDate time.Time,
	dueDate time.Time,
	totalAmount valueobject.Money,
) (*Document, error) {
	if documentNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Document number cannot be empty")
	}
	if len(documentNumber) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Document number cannot exceed 50 characters")
	}
	if !docType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Document type is not valid")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Document direction is not valid")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Party ID cannot be empty")
	}
	if documentDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Document date is required")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Total amount cannot be negative")
	}
	if dueDate.IsZero() {
		dueDate = documentDate
	}

	doc := &Document{
		CompanyAggregateRoot: shared.NewBranchAggregateRoot(companyID, branchID),
		DocumentNumber:       documentNumber,
		Type:                 docType,
		Direction:            direction,
		Status:               DocumentStatusPending,
		PartyID:              partyID,
		DocumentDate:         documentDate,
		DueDate:              dueDate,
		PeriodYear:           documentDate.Year(),
		PeriodMonth:          documentDate.Month(),
		TotalAmount:          totalAmount.Amount(),
		Lines:                make([]DocumentLine, 0),
	}

	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))

	return doc, nil
}

// AddLine appends a computed line item with the next 1-based line number
func (d *Document) AddLine(input DocumentLineInput) (*DocumentLine, error) {
	line, err := NewDocumentLine(d.ID, len(d.Lines)+1, input)
	if err != nil {
		return nil, err
	}
	d.Lines = append(d.Lines, *line)
	return line, nil
}

// SyncTotalWithLines recomputes the document total from its lines and
// overwrites the stored total when the caller-supplied value drifts by more
// than the 0.01 tolerance. Returns true if the total was overwritten.
func (d *Document) SyncTotalWithLines() bool {
	if len(d.Lines) == 0 {
		return false
	}
	sum := decimal.Zero
	for _, line := range d.Lines {
		sum = sum.Add(line.Total)
	}
	if d.TotalAmount.Sub(sum).Abs().GreaterThan(lineTotalTolerance) {
		d.TotalAmount = sum
		d.Touch()
		return true
	}
	return false
}

// RefreshStatus moves the document through the PENDING -> PARTIAL -> SETTLED
// machine based on the derived paid amount. Reversed and cancelled documents
// keep their terminal status regardless of allocations.
func (d *Document) RefreshStatus(paidAmount decimal.Decimal) {
	if d.Status == DocumentStatusReversed || d.Status == DocumentStatusCancelled {
		return
	}

	previous := d.Status
	switch {
	case paidAmount.LessThanOrEqual(decimal.Zero):
		d.Status = DocumentStatusPending
	case paidAmount.GreaterThanOrEqual(d.TotalAmount):
		d.Status = DocumentStatusSettled
	default:
		d.Status = DocumentStatusPartial
	}

	if d.Status != previous {
		d.Touch()
		if d.Status == DocumentStatusSettled {
			d.AddDomainEvent(NewDocumentSettledEvent(d))
		}
	}
}

// MarkReversed records that this document has been neutralized by the given
// reversal document. Existing allocations are left untouched; a reversed
// document can still show a nonzero paid amount from before reversal.
func (d *Document) MarkReversed(reversalDocumentID uuid.UUID, reason string) error {
	if d.Status == DocumentStatusReversed {
		return shared.NewDomainError(shared.CodeAlreadyReversed,
			fmt.Sprintf("Document %s is already reversed", d.DocumentNumber))
	}
	if d.Status == DocumentStatusCancelled {
		return shared.NewDomainError(shared.CodeDocumentCancelled,
			fmt.Sprintf("Document %s is cancelled and cannot be reversed", d.DocumentNumber))
	}

	now := time.Now()
	previous := d.Status
	d.Status = DocumentStatusReversed
	d.ReversedByDocumentID = &reversalDocumentID
	d.ReversedAt = &now
	d.ReversalReason = reason
	d.Touch()

	d.AddDomainEvent(NewDocumentReversedEvent(d, previous, reversalDocumentID))

	return nil
}

// Cancel cancels the document. Only documents without settlement activity
// can be cancelled; partially or fully paid documents must be reversed.
func (d *Document) Cancel(paidAmount decimal.Decimal, reason string) error {
	if d.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidStatus,
			fmt.Sprintf("Cannot cancel document in %s status", d.Status))
	}
	if paidAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError(shared.CodeInvalidStatus,
			"Cannot cancel a document with existing allocations")
	}
	if reason == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Cancel reason is required")
	}

	now := time.Now()
	d.Status = DocumentStatusCancelled
	d.CancelledAt = &now
	d.CancelReason = reason
	d.Touch()

	d.AddDomainEvent(NewDocumentCancelledEvent(d))

	return nil
}

// LinkReversal wires a freshly created reversal document back to its original
func (d *Document) LinkReversal(originalID uuid.UUID) {
	d.ReversesDocumentID = &originalID
	d.Touch()
}

// TotalAmountMoney returns the total amount as Money
func (d *Document) TotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyAmount(d.TotalAmount)
}

// IsOverdue returns true if the document is unpaid past its due date
func (d *Document) IsOverdue(now time.Time) bool {
	return d.Status.CanAcceptAllocation() && now.After(d.DueDate)
}
