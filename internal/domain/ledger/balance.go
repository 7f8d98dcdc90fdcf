package ledger

import (
	"github.com/shopspring/decimal"
)

// DocumentBalances holds the derived settlement amounts of a document
type DocumentBalances struct {
	PaidAmount   decimal.Decimal
	UnpaidAmount decimal.Decimal
}

// PaymentBalances holds the derived allocation amounts of a payment
type PaymentBalances struct {
	AllocatedAmount   decimal.Decimal
	UnallocatedAmount decimal.Decimal
}

// DeriveDocumentBalances computes paid/unpaid amounts for a document from its
// allocations. Only ACTIVE allocations targeting the document count; there is
// no stored paid column anywhere, so recalculation bugs cannot exist.
func DeriveDocumentBalances(doc *Document, allocations []PaymentAllocation) DocumentBalances {
	paid := decimal.Zero
	for _, alloc := range allocations {
		if alloc.DocumentID == doc.ID && alloc.IsActive() {
			paid = paid.Add(alloc.Amount)
		}
	}
	return DocumentBalances{
		PaidAmount:   paid,
		UnpaidAmount: doc.TotalAmount.Sub(paid),
	}
}

// DerivePaymentBalances computes allocated/unallocated amounts for a payment
// from its allocations, counting only ACTIVE allocations drawn on the payment.
func DerivePaymentBalances(payment *Payment, allocations []PaymentAllocation) PaymentBalances {
	allocated := decimal.Zero
	for _, alloc := range allocations {
		if alloc.PaymentID == payment.ID && alloc.IsActive() {
			allocated = allocated.Add(alloc.Amount)
		}
	}
	return PaymentBalances{
		AllocatedAmount:   allocated,
		UnallocatedAmount: payment.Amount.Sub(allocated),
	}
}

// StatusForPaidAmount returns the document status implied by a derived paid
// amount: PENDING at zero, SETTLED at or above total, PARTIAL in between.
func StatusForPaidAmount(total, paid decimal.Decimal) DocumentStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return DocumentStatusPending
	case paid.GreaterThanOrEqual(total):
		return DocumentStatusSettled
	default:
		return DocumentStatusPartial
	}
}
