package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SequenceScope identifies one monotonic counter. Document numbers are scoped
// to company+kind+month; payment numbers additionally include the branch.
type SequenceScope struct {
	CompanyID uuid.UUID
	BranchID  *uuid.UUID
	Kind      string // Document type or payment type
	Year      int
	Month     time.Month
}

// Key returns the canonical string form of the scope, used as the counter row key
func (s SequenceScope) Key() string {
	branch := "-"
	if s.BranchID != nil {
		branch = s.BranchID.String()
	}
	return fmt.Sprintf("%s/%s/%s/%04d%02d", s.CompanyID, branch, s.Kind, s.Year, int(s.Month))
}

// SequenceGenerator hands out gap-free-enough sequence numbers per scope.
// Implementations must be safe against concurrent callers in the same scope;
// the persistence implementation uses an atomic counter-row upsert rather
// than the scan-max-and-increment approach, which loses updates across
// concurrent transactions.
type SequenceGenerator interface {
	Next(ctx context.Context, scope SequenceScope) (int, error)
}

// FormatDocumentNumber renders a document number: {PREFIX}-{YYYY}{MM}-{SEQ:04d}
func FormatDocumentNumber(docType DocumentType, year int, month time.Month, seq int) string {
	return fmt.Sprintf("%s-%04d%02d-%04d", docType.NumberPrefix(), year, int(month), seq)
}

// FormatPaymentNumber renders a payment number: {PREFIX}-{YYYY}{MM}-{SEQ:04d}
func FormatPaymentNumber(paymentType PaymentType, year int, month time.Month, seq int) string {
	return fmt.Sprintf("%s-%04d%02d-%04d", paymentType.NumberPrefix(), year, int(month), seq)
}
