package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewLedgerMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, lm)
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, lm)
	assert.Equal(t, "NewLedgerMetrics: meter cannot be nil", err.Error())
}

func TestLedgerMetrics_RecordDocumentIssued(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	companyID := uuid.New()

	// Should not panic
	lm.RecordDocumentIssued(ctx, companyID, "CUSTOMER_INVOICE", "RECEIVABLE")
	lm.RecordDocumentIssued(ctx, companyID, "SUPPLIER_INVOICE", "PAYABLE")
}

func TestLedgerMetrics_RecordDocumentWithAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	companyID := uuid.New()
	amount := decimal.NewFromFloat(199.99)

	// Should not panic and record both count and amount
	lm.RecordDocumentWithAmount(ctx, companyID, "CUSTOMER_INVOICE", "RECEIVABLE", amount)
}

func TestLedgerMetrics_RecordPayment(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	companyID := uuid.New()

	// Should not panic
	lm.RecordPayment(ctx, companyID, "CASH_IN", "IN")
	lm.RecordPayment(ctx, companyID, "BANK_OUT", "OUT")
}

func TestLedgerMetrics_RecordAllocationAndSettlement(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	companyID := uuid.New()

	// Should not panic
	lm.RecordAllocation(ctx, companyID)
	lm.RecordDocumentSettled(ctx, companyID, "CUSTOMER_INVOICE")
	lm.RecordReversal(ctx, companyID, "CUSTOMER_INVOICE")
}

func TestLedgerMetrics_RecordPeriodLock(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	companyID := uuid.New()

	// Should not panic
	lm.RecordPeriodLock(ctx, companyID, "2026-03", telemetry.PeriodActionLock)
	lm.RecordPeriodLock(ctx, companyID, "2026-03", telemetry.PeriodActionUnlock)
}

func TestLedgerMetrics_RecordBalanceGauges(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	companyID := uuid.New()

	// Should not panic
	lm.RecordOpenDocumentCount(ctx, companyID, "RECEIVABLE", 12)
	lm.RecordOutstandingAmount(ctx, companyID, "RECEIVABLE", decimal.NewFromFloat(1500.50))
}

// Mock implementations for testing periodic collection

type mockCompanyProvider struct {
	companyIDs []uuid.UUID
	err        error
}

func (m *mockCompanyProvider) GetActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.companyIDs, m.err
}

type mockBalanceProvider struct {
	counts map[string]int64
	totals map[string]decimal.Decimal
	err    error
}

func (m *mockBalanceProvider) GetOpenDocumentCounts(ctx context.Context, companyID uuid.UUID) (map[string]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.counts, nil
}

func (m *mockBalanceProvider) GetOutstandingTotals(ctx context.Context, companyID uuid.UUID) (map[string]decimal.Decimal, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.totals, nil
}

func TestLedgerMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	companyID := uuid.New()

	balanceProvider := &mockBalanceProvider{
		counts: map[string]int64{
			"RECEIVABLE": 7,
		},
		totals: map[string]decimal.Decimal{
			"RECEIVABLE": decimal.NewFromFloat(980.00),
		},
	}

	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:           meter,
		Logger:          zap.NewNop(),
		BalanceProvider: balanceProvider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	companyProvider := &mockCompanyProvider{
		companyIDs: []uuid.UUID{companyID},
	}

	// Start periodic collection with short interval for testing
	lm.StartPeriodicCollection(ctx, companyProvider, 100*time.Millisecond)

	// Wait for at least one collection cycle
	time.Sleep(150 * time.Millisecond)

	// Stop collection
	lm.Stop()

	// Should complete without error
}

func TestLedgerMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		// No balance provider
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	companyProvider := &mockCompanyProvider{
		companyIDs: []uuid.UUID{uuid.New()},
	}

	// Should not panic with no balance provider
	lm.StartPeriodicCollection(ctx, companyProvider, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	lm.Stop()
}

func TestLedgerMetrics_Stop_Idempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Calling Stop multiple times should not panic
	lm.Stop()
	lm.Stop()
	lm.Stop()
}

func TestLedgerMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	companyProvider := &mockCompanyProvider{
		companyIDs: []uuid.UUID{},
	}

	// Calling StartPeriodicCollection multiple times should only start once
	lm.StartPeriodicCollection(ctx, companyProvider, time.Hour)
	lm.StartPeriodicCollection(ctx, companyProvider, time.Minute)
	lm.StartPeriodicCollection(ctx, companyProvider, time.Second)

	lm.Stop()
}

func TestPeriodLockAction_Values(t *testing.T) {
	assert.Equal(t, telemetry.PeriodLockAction("lock"), telemetry.PeriodActionLock)
	assert.Equal(t, telemetry.PeriodLockAction("unlock"), telemetry.PeriodActionUnlock)
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
