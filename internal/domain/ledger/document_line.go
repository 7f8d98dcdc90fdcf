package ledger

import (
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentLineInput carries the caller-supplied values for one line item.
// DiscountAmount wins over DiscountPercent when both are set, and TaxAmount
// wins over TaxRate; the percent/rate forms are computed from the subtotal.
type DocumentLineInput struct {
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent *decimal.Decimal
	DiscountAmount  *decimal.Decimal
	TaxRate         *decimal.Decimal
	TaxAmount       *decimal.Decimal
}

// DocumentLine is a computed line item within a Document
type DocumentLine struct {
	ID              uuid.UUID       `json:"id"`
	DocumentID      uuid.UUID       `json:"document_id"`
	LineNumber      int             `json:"line_number"` // 1-based
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Total           decimal.Decimal `json:"total"`
}

var oneHundred = decimal.NewFromInt(100)

// NewDocumentLine computes and validates a line item:
//
//	discount = discount_amount ?? quantity*unit_price*discount_percent/100
//	subtotal = quantity*unit_price - discount
//	tax      = tax_amount ?? subtotal*tax_rate/100
//	total    = subtotal + tax
func NewDocumentLine(documentID uuid.UUID, lineNumber int, input DocumentLineInput) (*DocumentLine, error) {
	if lineNumber < 1 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Line number must start at 1")
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Line quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Line unit price cannot be negative")
	}

	gross := input.Quantity.Mul(input.UnitPrice)

	discountPercent := decimal.Zero
	var discountAmount decimal.Decimal
	switch {
	case input.DiscountAmount != nil:
		discountAmount = *input.DiscountAmount
	case input.DiscountPercent != nil:
		discountPercent = *input.DiscountPercent
		discountAmount = gross.Mul(discountPercent).Div(oneHundred)
	default:
		discountAmount = decimal.Zero
	}
	if discountAmount.IsNegative() || discountAmount.GreaterThan(gross) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Line discount must be between zero and the line gross amount")
	}

	subtotal := gross.Sub(discountAmount)

	taxRate := decimal.Zero
	var taxAmount decimal.Decimal
	switch {
	case input.TaxAmount != nil:
		taxAmount = *input.TaxAmount
	case input.TaxRate != nil:
		taxRate = *input.TaxRate
		taxAmount = subtotal.Mul(taxRate).Div(oneHundred)
	default:
		taxAmount = decimal.Zero
	}
	if taxAmount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Line tax cannot be negative")
	}

	return &DocumentLine{
		ID:              uuid.New(),
		DocumentID:      documentID,
		LineNumber:      lineNumber,
		Description:     input.Description,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		TaxRate:         taxRate,
		TaxAmount:       taxAmount,
		Subtotal:        subtotal,
		Total:           subtotal.Add(taxAmount),
	}, nil
}
