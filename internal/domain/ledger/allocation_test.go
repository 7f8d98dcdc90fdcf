package ledger

import (
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestAllocation(t *testing.T, paymentID, documentID uuid.UUID, amount float64) *PaymentAllocation {
	t.Helper()
	alloc, err := NewPaymentAllocation(paymentID, documentID,
		valueobject.NewMoneyFromFloat(amount), time.Now(), "", uuid.New())
	require.NoError(t, err)
	return alloc
}

func TestNewPaymentAllocation(t *testing.T) {
	paymentID := uuid.New()
	documentID := uuid.New()
	actorID := uuid.New()
	now := time.Now()
	amount := valueobject.NewMoneyFromFloat(100)

	t.Run("creates active allocation", func(t *testing.T) {
		alloc, err := NewPaymentAllocation(paymentID, documentID, amount, now, "march invoice", actorID)
		require.NoError(t, err)

		assert.Equal(t, AllocationStatusActive, alloc.Status)
		assert.True(t, alloc.IsActive())
		assert.Equal(t, actorID, alloc.CreatedBy)
		assert.Nil(t, alloc.CancelledAt)
	})

	tests := []struct {
		name string
		fn   func() (*PaymentAllocation, error)
	}{
		{"nil payment", func() (*PaymentAllocation, error) {
			return NewPaymentAllocation(uuid.Nil, documentID, amount, now, "", actorID)
		}},
		{"nil document", func() (*PaymentAllocation, error) {
			return NewPaymentAllocation(paymentID, uuid.Nil, amount, now, "", actorID)
		}},
		{"zero amount", func() (*PaymentAllocation, error) {
			return NewPaymentAllocation(paymentID, documentID, valueobject.Zero(), now, "", actorID)
		}},
		{"negative amount", func() (*PaymentAllocation, error) {
			return NewPaymentAllocation(paymentID, documentID, valueobject.NewMoneyFromFloat(-10), now, "", actorID)
		}},
		{"nil actor", func() (*PaymentAllocation, error) {
			return NewPaymentAllocation(paymentID, documentID, amount, now, "", uuid.Nil)
		}},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := tt.fn()
			require.Error(t, err)
			assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))
		})
	}
}

func TestPaymentAllocation_Cancel(t *testing.T) {
	t.Run("cancels active allocation", func(t *testing.T) {
		alloc := createTestAllocation(t, uuid.New(), uuid.New(), 100)
		actorID := uuid.New()

		require.NoError(t, alloc.Cancel(actorID))

		assert.Equal(t, AllocationStatusCancelled, alloc.Status)
		assert.False(t, alloc.IsActive())
		require.NotNil(t, alloc.CancelledBy)
		assert.Equal(t, actorID, *alloc.CancelledBy)
		assert.NotNil(t, alloc.CancelledAt)
	})

	t.Run("rejects double cancel", func(t *testing.T) {
		alloc := createTestAllocation(t, uuid.New(), uuid.New(), 100)
		require.NoError(t, alloc.Cancel(uuid.New()))

		err := alloc.Cancel(uuid.New())
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidStatus, shared.ErrorCode(err))
	})
}
