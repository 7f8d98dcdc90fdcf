package party

import (
	"testing"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParty(t *testing.T) {
	companyID := uuid.New()

	t.Run("creates active party", func(t *testing.T) {
		p, err := NewParty(companyID, nil, "CUST-0001", PartyTypeCustomer, "Acme Trading")
		require.NoError(t, err)

		assert.True(t, p.IsActive)
		assert.Equal(t, companyID, p.CompanyID)
		assert.Equal(t, "CUST-0001", p.Code)
	})

	tests := []struct {
		name      string
		code      string
		partyType PartyType
		partyName string
	}{
		{"empty code", "", PartyTypeCustomer, "Acme"},
		{"invalid type", "CUST-0001", PartyType("ALIEN"), "Acme"},
		{"empty name", "CUST-0001", PartyTypeCustomer, ""},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := NewParty(companyID, nil, tt.code, tt.partyType, tt.partyName)
			require.Error(t, err)
			assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))
		})
	}
}

func TestParty_DeactivateActivate(t *testing.T) {
	p, err := NewParty(uuid.New(), nil, "SUP-0001", PartyTypeSupplier, "Parts Ltd")
	require.NoError(t, err)

	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive)

	err = p.Deactivate()
	require.Error(t, err)
	assert.Equal(t, shared.CodeInvalidStatus, shared.ErrorCode(err))

	require.NoError(t, p.Activate())
	assert.True(t, p.IsActive)

	err = p.Activate()
	require.Error(t, err)
	assert.Equal(t, shared.CodeInvalidStatus, shared.ErrorCode(err))
}

func TestParty_Rename(t *testing.T) {
	p, err := NewParty(uuid.New(), nil, "EMP-0001", PartyTypeEmployee, "J. Doe")
	require.NoError(t, err)

	require.NoError(t, p.Rename("Jane Doe"))
	assert.Equal(t, "Jane Doe", p.Name)

	require.Error(t, p.Rename(""))
}

func TestNewBalanceSummary(t *testing.T) {
	partyID := uuid.New()
	summary := NewBalanceSummary(partyID, decimal.NewFromInt(700), decimal.NewFromInt(200))

	assert.True(t, summary.NetBalance.Equal(decimal.NewFromInt(500)),
		"net is receivable minus payable")
}
