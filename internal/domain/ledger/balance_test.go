package ledger

import (
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDocumentBalances(t *testing.T) {
	doc := createTestDocument(t, DirectionReceivable, "1000.00")
	otherDocID := uuid.New()

	a1 := createTestAllocation(t, uuid.New(), doc.ID, 300)
	a2 := createTestAllocation(t, uuid.New(), doc.ID, 200)
	cancelled := createTestAllocation(t, uuid.New(), doc.ID, 150)
	require.NoError(t, cancelled.Cancel(uuid.New()))
	foreign := createTestAllocation(t, uuid.New(), otherDocID, 400)

	balances := DeriveDocumentBalances(doc, []PaymentAllocation{*a1, *a2, *cancelled, *foreign})

	assert.True(t, balances.PaidAmount.Equal(decimal.NewFromInt(500)),
		"cancelled and foreign allocations must not count")
	assert.True(t, balances.UnpaidAmount.Equal(decimal.NewFromInt(500)))
}

func TestDerivePaymentBalances(t *testing.T) {
	payment, err := NewPayment(uuid.New(), nil, "CAS-202603-0001", PaymentTypeCashIn,
		PaymentDirectionIn, ptr(uuid.New()), PaymentSources{CashboxID: ptr(uuid.New())},
		time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		valueobject.NewMoneyFromFloat(800))
	require.NoError(t, err)

	a1 := createTestAllocation(t, payment.ID, uuid.New(), 300)
	cancelled := createTestAllocation(t, payment.ID, uuid.New(), 500)
	require.NoError(t, cancelled.Cancel(uuid.New()))

	balances := DerivePaymentBalances(payment, []PaymentAllocation{*a1, *cancelled})

	assert.True(t, balances.AllocatedAmount.Equal(decimal.NewFromInt(300)))
	assert.True(t, balances.UnallocatedAmount.Equal(decimal.NewFromInt(500)),
		"cancelled allocation frees the payment again")
}

func TestStatusForPaidAmount(t *testing.T) {
	total := decimal.NewFromInt(1000)

	tests := []struct {
		name     string
		paid     decimal.Decimal
		expected DocumentStatus
	}{
		{"nothing paid", decimal.Zero, DocumentStatusPending},
		{"partially paid", decimal.NewFromInt(1), DocumentStatusPartial},
		{"almost settled", decimal.RequireFromString("999.99"), DocumentStatusPartial},
		{"exactly settled", total, DocumentStatusSettled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusForPaidAmount(total, tt.paid))
		})
	}
}
