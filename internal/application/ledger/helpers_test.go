package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/party"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	testCompanyID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	testActorID   = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	testDate      = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
)

func (env *testEnv) seedParty(t *testing.T) *party.Party {
	t.Helper()
	p, err := party.NewParty(testCompanyID, nil, "CUST-0001", party.PartyTypeCustomer, "Acme Trading")
	require.NoError(t, err)
	env.state.parties[p.ID] = p
	return p
}

func (env *testEnv) seedCashbox(t *testing.T) *ledger.Cashbox {
	t.Helper()
	box, err := ledger.NewCashbox(testCompanyID, nil, "MAIN", "Main cashbox")
	require.NoError(t, err)
	env.state.cashboxes[box.ID] = box
	return box
}

func (env *testEnv) seedBankAccount(t *testing.T) *ledger.BankAccount {
	t.Helper()
	account, err := ledger.NewBankAccount(testCompanyID, nil, "OPER", "Operating account", "First Bank", "12345678")
	require.NoError(t, err)
	env.state.bankAccounts[account.ID] = account
	return account
}

func (env *testEnv) createInvoice(t *testing.T, partyID uuid.UUID, amount float64, date time.Time) *DocumentResult {
	t.Helper()
	result, err := env.obligations.CreateDocument(context.Background(), CreateDocumentRequest{
		CompanyID:    testCompanyID,
		Type:         ledger.DocumentTypeCustomerInvoice,
		Direction:    ledger.DirectionReceivable,
		PartyID:      partyID,
		DocumentDate: date,
		TotalAmount:  decimal.NewFromFloat(amount),
		ActorID:      testActorID,
	})
	require.NoError(t, err)
	return result
}

func (env *testEnv) createSupplierInvoice(t *testing.T, partyID uuid.UUID, amount float64, date time.Time) *DocumentResult {
	t.Helper()
	result, err := env.obligations.CreateDocument(context.Background(), CreateDocumentRequest{
		CompanyID:    testCompanyID,
		Type:         ledger.DocumentTypeSupplierInvoice,
		Direction:    ledger.DirectionPayable,
		PartyID:      partyID,
		DocumentDate: date,
		TotalAmount:  decimal.NewFromFloat(amount),
		ActorID:      testActorID,
	})
	require.NoError(t, err)
	return result
}

func (env *testEnv) recordCashIn(t *testing.T, partyID, cashboxID uuid.UUID, amount float64, date time.Time) *PaymentResult {
	t.Helper()
	result, err := env.payments.RecordPayment(context.Background(), RecordPaymentRequest{
		CompanyID:   testCompanyID,
		Type:        ledger.PaymentTypeCashIn,
		Direction:   ledger.PaymentDirectionIn,
		PartyID:     &partyID,
		Sources:     ledger.PaymentSources{CashboxID: &cashboxID},
		PaymentDate: date,
		Amount:      decimal.NewFromFloat(amount),
		ActorID:     testActorID,
	})
	require.NoError(t, err)
	return result
}

func (env *testEnv) lockPeriod(t *testing.T, date time.Time) {
	t.Helper()
	_, err := env.periods.LockPeriod(context.Background(), testCompanyID, date.Year(), date.Month(), testActorID, "close")
	require.NoError(t, err)
}
