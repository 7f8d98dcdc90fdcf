package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "CUS-202603-0001", FormatDocumentNumber(DocumentTypeCustomerInvoice, 2026, time.March, 1))
	assert.Equal(t, "SUP-202612-0042", FormatDocumentNumber(DocumentTypeSupplierInvoice, 2026, time.December, 42))
	assert.Equal(t, "REV-202601-1234", FormatDocumentNumber(DocumentTypeReversal, 2026, time.January, 1234))
}

func TestFormatPaymentNumber(t *testing.T) {
	assert.Equal(t, "CAS-202603-0007", FormatPaymentNumber(PaymentTypeCashIn, 2026, time.March, 7))
	assert.Equal(t, "TRA-202611-0001", FormatPaymentNumber(PaymentTypeTransfer, 2026, time.November, 1))
}

func TestSequenceScope_Key(t *testing.T) {
	companyID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	branchID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	t.Run("without branch", func(t *testing.T) {
		scope := SequenceScope{CompanyID: companyID, Kind: "CUSTOMER_INVOICE", Year: 2026, Month: time.March}
		assert.Equal(t, "11111111-1111-1111-1111-111111111111/-/CUSTOMER_INVOICE/202603", scope.Key())
	})

	t.Run("with branch", func(t *testing.T) {
		scope := SequenceScope{CompanyID: companyID, BranchID: &branchID, Kind: "CASH_IN", Year: 2026, Month: time.March}
		assert.Equal(t, "11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222/CASH_IN/202603", scope.Key())
	})
}
