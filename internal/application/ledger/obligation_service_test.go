package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObligationService_CreateDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending document with generated number", func(t *testing.T) {
		env := newTestEnv()
		p := env.seedParty(t)

		result := env.createInvoice(t, p.ID, 1000, testDate)

		doc := result.Document
		assert.Equal(t, "CUS-202603-0001", doc.DocumentNumber)
		assert.Equal(t, ledger.DocumentStatusPending, doc.Status)
		assert.True(t, result.UnpaidAmount.Equal(decimal.NewFromInt(1000)))
		assert.Len(t, env.state.auditEntries, 1)

		// Period materialized lazily as OPEN
		locked, err := env.periods.IsLocked(ctx, testCompanyID, 2026, time.March)
		require.NoError(t, err)
		assert.False(t, locked)
	})

	t.Run("numbers increment per type and month", func(t *testing.T) {
		env := newTestEnv()
		p := env.seedParty(t)

		first := env.createInvoice(t, p.ID, 100, testDate)
		second := env.createInvoice(t, p.ID, 200, testDate)
		otherMonth := env.createInvoice(t, p.ID, 300, testDate.AddDate(0, 1, 0))
		otherType := env.createSupplierInvoice(t, p.ID, 400, testDate)

		assert.Equal(t, "CUS-202603-0001", first.Document.DocumentNumber)
		assert.Equal(t, "CUS-202603-0002", second.Document.DocumentNumber)
		assert.Equal(t, "CUS-202604-0001", otherMonth.Document.DocumentNumber)
		assert.Equal(t, "SUP-202603-0001", otherType.Document.DocumentNumber)
	})

	t.Run("line totals overwrite a drifted header total", func(t *testing.T) {
		env := newTestEnv()
		p := env.seedParty(t)

		result, err := env.obligations.CreateDocument(ctx, CreateDocumentRequest{
			CompanyID:    testCompanyID,
			Type:         ledger.DocumentTypeCustomerInvoice,
			Direction:    ledger.DirectionReceivable,
			PartyID:      p.ID,
			DocumentDate: testDate,
			TotalAmount:  decimal.NewFromInt(500), // Drifts from the line sum
			Lines: []DocumentLineRequest{
				{Description: "Consulting", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(100)},
			},
			ActorID: testActorID,
		})
		require.NoError(t, err)
		assert.True(t, result.Document.TotalAmount.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("rejects locked period", func(t *testing.T) {
		env := newTestEnv()
		p := env.seedParty(t)
		env.lockPeriod(t, testDate)

		_, err := env.obligations.CreateDocument(ctx, CreateDocumentRequest{
			CompanyID:    testCompanyID,
			Type:         ledger.DocumentTypeCustomerInvoice,
			Direction:    ledger.DirectionReceivable,
			PartyID:      p.ID,
			DocumentDate: testDate,
			TotalAmount:  decimal.NewFromInt(100),
			ActorID:      testActorID,
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodePeriodLocked, shared.ErrorCode(err))
	})

	t.Run("rejects unknown party", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.obligations.CreateDocument(ctx, CreateDocumentRequest{
			CompanyID:    testCompanyID,
			Type:         ledger.DocumentTypeCustomerInvoice,
			Direction:    ledger.DirectionReceivable,
			PartyID:      uuid.New(),
			DocumentDate: testDate,
			TotalAmount:  decimal.NewFromInt(100),
			ActorID:      testActorID,
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.ErrorCode(err))
	})

	t.Run("rejects inactive party", func(t *testing.T) {
		env := newTestEnv()
		p := env.seedParty(t)
		require.NoError(t, p.Deactivate())
		env.state.parties[p.ID] = p

		_, err := env.obligations.CreateDocument(ctx, CreateDocumentRequest{
			CompanyID:    testCompanyID,
			Type:         ledger.DocumentTypeCustomerInvoice,
			Direction:    ledger.DirectionReceivable,
			PartyID:      p.ID,
			DocumentDate: testDate,
			TotalAmount:  decimal.NewFromInt(100),
			ActorID:      testActorID,
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidStatus, shared.ErrorCode(err))
	})

	t.Run("rejects missing actor", func(t *testing.T) {
		env := newTestEnv()
		p := env.seedParty(t)

		_, err := env.obligations.CreateDocument(ctx, CreateDocumentRequest{
			CompanyID:    testCompanyID,
			Type:         ledger.DocumentTypeCustomerInvoice,
			Direction:    ledger.DirectionReceivable,
			PartyID:      p.ID,
			DocumentDate: testDate,
			TotalAmount:  decimal.NewFromInt(100),
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))
	})
}

func TestObligationService_GetDocument(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	p := env.seedParty(t)
	box := env.seedCashbox(t)

	doc := env.createInvoice(t, p.ID, 1000, testDate)
	payment := env.recordCashIn(t, p.ID, box.ID, 400, testDate)

	_, err := env.allocations.Allocate(ctx, AllocateRequest{
		CompanyID: testCompanyID,
		PaymentID: payment.Payment.ID,
		Items:     []AllocationItem{{DocumentID: doc.Document.ID, Amount: decimal.NewFromInt(400)}},
		ActorID:   testActorID,
	})
	require.NoError(t, err)

	result, err := env.obligations.GetDocument(ctx, testCompanyID, doc.Document.ID)
	require.NoError(t, err)
	assert.True(t, result.PaidAmount.Equal(decimal.NewFromInt(400)))
	assert.True(t, result.UnpaidAmount.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, ledger.DocumentStatusPartial, result.Document.Status)

	_, err = env.obligations.GetDocument(ctx, testCompanyID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, shared.CodeNotFound, shared.ErrorCode(err))
}

func TestObligationService_OutstandingDocuments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	p := env.seedParty(t)
	box := env.seedCashbox(t)

	first := env.createInvoice(t, p.ID, 500, testDate)
	env.createInvoice(t, p.ID, 300, testDate.AddDate(0, 0, 5))

	// Settle the first one entirely; it leaves the picklist
	payment := env.recordCashIn(t, p.ID, box.ID, 500, testDate)
	_, err := env.allocations.Allocate(ctx, AllocateRequest{
		CompanyID: testCompanyID,
		PaymentID: payment.Payment.ID,
		Items:     []AllocationItem{{DocumentID: first.Document.ID, Amount: decimal.NewFromInt(500)}},
		ActorID:   testActorID,
	})
	require.NoError(t, err)

	outstanding, err := env.obligations.OutstandingDocuments(ctx, testCompanyID, p.ID)
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.True(t, outstanding[0].UnpaidAmount.Equal(decimal.NewFromInt(300)))
}

func TestObligationService_CancelDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels unallocated document", func(t *testing.T) {
		env := newTestEnv()
		p := env.seedParty(t)
		doc := env.createInvoice(t, p.ID, 500, testDate)

		cancelled, err := env.obligations.CancelDocument(ctx, testCompanyID, doc.Document.ID, testActorID, "duplicate")
		require.NoError(t, err)
		assert.Equal(t, ledger.DocumentStatusCancelled, cancelled.Status)
		assert.Equal(t, ledger.DocumentStatusCancelled, env.state.documents[doc.Document.ID].Status)
	})

	t.Run("rejects cancel once allocated", func(t *testing.T) {
		env := newTestEnv()
		p := env.seedParty(t)
		box := env.seedCashbox(t)
		doc := env.createInvoice(t, p.ID, 500, testDate)
		payment := env.recordCashIn(t, p.ID, box.ID, 200, testDate)

		_, err := env.allocations.Allocate(ctx, AllocateRequest{
			CompanyID: testCompanyID,
			PaymentID: payment.Payment.ID,
			Items:     []AllocationItem{{DocumentID: doc.Document.ID, Amount: decimal.NewFromInt(200)}},
			ActorID:   testActorID,
		})
		require.NoError(t, err)

		_, err = env.obligations.CancelDocument(ctx, testCompanyID, doc.Document.ID, testActorID, "too late")
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidStatus, shared.ErrorCode(err))
	})

	t.Run("rejects cancel in locked period", func(t *testing.T) {
		env := newTestEnv()
		p := env.seedParty(t)
		doc := env.createInvoice(t, p.ID, 500, testDate)
		env.lockPeriod(t, testDate)

		_, err := env.obligations.CancelDocument(ctx, testCompanyID, doc.Document.ID, testActorID, "mistake")
		require.Error(t, err)
		assert.Equal(t, shared.CodePeriodLocked, shared.ErrorCode(err))
	})
}
