// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LedgerMetrics provides business metrics for the settlement engine.
// It tracks document issuance, payment activity, allocation throughput,
// and outstanding balances.
type LedgerMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	documentIssuedTotal  *Counter
	documentAmountTotal  *Counter
	documentSettledTotal *Counter
	paymentRecordedTotal *Counter
	allocationTotal      *Counter
	reversalTotal        *Counter
	periodLockTotal      *Counter

	// Gauge metrics (point-in-time values)
	openDocumentCount *Gauge
	outstandingAmount *FloatGauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	balanceProvider BalanceMetricsProvider
}

// BalanceMetricsProvider provides outstanding-balance data for periodic
// metrics collection. The interface lets the telemetry layer query ledger
// state without depending on the ledger domain directly.
type BalanceMetricsProvider interface {
	// GetOpenDocumentCounts returns the number of unsettled documents per
	// direction (RECEIVABLE/PAYABLE) for a company.
	GetOpenDocumentCounts(ctx context.Context, companyID uuid.UUID) (map[string]int64, error)

	// GetOutstandingTotals returns the unsettled amount per direction for a company.
	GetOutstandingTotals(ctx context.Context, companyID uuid.UUID) (map[string]decimal.Decimal, error)
}

// LedgerMetricsConfig holds configuration for ledger metrics.
type LedgerMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	BalanceProvider BalanceMetricsProvider
}

// NewLedgerMetrics creates a new LedgerMetrics instance.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		balanceProvider: cfg.BalanceProvider,
	}

	var err error

	// Document metrics
	lm.documentIssuedTotal, err = NewCounter(
		cfg.Meter,
		"finbooks_document_issued_total",
		"Total number of documents issued",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	lm.documentAmountTotal, err = NewCounter(
		cfg.Meter,
		"finbooks_document_amount_total",
		"Total issued document amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	lm.documentSettledTotal, err = NewCounter(
		cfg.Meter,
		"finbooks_document_settled_total",
		"Total number of documents fully settled",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	// Payment and allocation metrics
	lm.paymentRecordedTotal, err = NewCounter(
		cfg.Meter,
		"finbooks_payment_recorded_total",
		"Total number of payments recorded",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	lm.allocationTotal, err = NewCounter(
		cfg.Meter,
		"finbooks_allocation_total",
		"Total number of payment allocations applied",
		"{allocations}",
	)
	if err != nil {
		return nil, err
	}

	lm.reversalTotal, err = NewCounter(
		cfg.Meter,
		"finbooks_reversal_total",
		"Total number of reversal documents created",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	lm.periodLockTotal, err = NewCounter(
		cfg.Meter,
		"finbooks_period_lock_total",
		"Total number of accounting period lock and unlock operations",
		"{operations}",
	)
	if err != nil {
		return nil, err
	}

	// Balance gauge metrics
	lm.openDocumentCount, err = NewGauge(
		cfg.Meter,
		"finbooks_open_document_count",
		"Current number of unsettled documents",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	lm.outstandingAmount, err = NewFloatGauge(
		cfg.Meter,
		"finbooks_outstanding_amount",
		"Current unsettled document amount",
		"{currency}",
	)
	if err != nil {
		return nil, err
	}

	return lm, nil
}

// =============================================================================
// Document Metrics
// =============================================================================

// RecordDocumentIssued records a document creation event.
// This should be called from the application layer when a document is issued.
func (lm *LedgerMetrics) RecordDocumentIssued(ctx context.Context, companyID uuid.UUID, documentType, direction string) {
	lm.documentIssuedTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrDocumentType.String(documentType),
		AttrDirection.String(direction),
	)
}

// RecordDocumentAmount records the issued document amount.
// Amount should be in the smallest currency unit (cents).
func (lm *LedgerMetrics) RecordDocumentAmount(ctx context.Context, companyID uuid.UUID, documentType string, amountCents int64) {
	lm.documentAmountTotal.Add(ctx, amountCents,
		AttrCompanyID.String(companyID.String()),
		AttrDocumentType.String(documentType),
	)
}

// RecordDocumentWithAmount is a convenience method that records both document count and amount.
func (lm *LedgerMetrics) RecordDocumentWithAmount(ctx context.Context, companyID uuid.UUID, documentType, direction string, amount decimal.Decimal) {
	lm.RecordDocumentIssued(ctx, companyID, documentType, direction)

	// Convert to cents (multiply by 100)
	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	lm.RecordDocumentAmount(ctx, companyID, documentType, amountCents)
}

// RecordDocumentSettled records a document reaching full settlement.
func (lm *LedgerMetrics) RecordDocumentSettled(ctx context.Context, companyID uuid.UUID, documentType string) {
	lm.documentSettledTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrDocumentType.String(documentType),
	)
}

// RecordReversal records the creation of a reversal document.
func (lm *LedgerMetrics) RecordReversal(ctx context.Context, companyID uuid.UUID, reversedType string) {
	lm.reversalTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrDocumentType.String(reversedType),
	)
}

// =============================================================================
// Payment and Allocation Metrics
// =============================================================================

// RecordPayment records a payment being recorded.
func (lm *LedgerMetrics) RecordPayment(ctx context.Context, companyID uuid.UUID, paymentType, direction string) {
	lm.paymentRecordedTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrPaymentType.String(paymentType),
		AttrPaymentDirection.String(direction),
	)
}

// RecordAllocation records a payment allocation being applied.
func (lm *LedgerMetrics) RecordAllocation(ctx context.Context, companyID uuid.UUID) {
	lm.allocationTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
	)
}

// =============================================================================
// Period Metrics
// =============================================================================

// PeriodLockAction labels a period lock counter increment.
type PeriodLockAction string

const (
	PeriodActionLock   PeriodLockAction = "lock"
	PeriodActionUnlock PeriodLockAction = "unlock"
)

// AttrPeriodAction labels the lock/unlock action on period metrics.
var AttrPeriodAction = attribute.Key("action")

// RecordPeriodLock records a period lock or unlock operation.
// The period label uses the YYYY-MM form.
func (lm *LedgerMetrics) RecordPeriodLock(ctx context.Context, companyID uuid.UUID, period string, action PeriodLockAction) {
	lm.periodLockTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrPeriod.String(period),
		AttrPeriodAction.String(string(action)),
	)
}

// =============================================================================
// Balance Metrics
// =============================================================================

// RecordOpenDocumentCount records the current number of unsettled documents.
// This is a gauge metric that should be updated periodically.
func (lm *LedgerMetrics) RecordOpenDocumentCount(ctx context.Context, companyID uuid.UUID, direction string, count int64) {
	lm.openDocumentCount.Record(ctx, count,
		AttrCompanyID.String(companyID.String()),
		AttrDirection.String(direction),
	)
}

// RecordOutstandingAmount records the current unsettled amount per direction.
// This is a gauge metric that should be updated periodically.
func (lm *LedgerMetrics) RecordOutstandingAmount(ctx context.Context, companyID uuid.UUID, direction string, amount decimal.Decimal) {
	value, _ := amount.Float64()
	lm.outstandingAmount.Record(ctx, value,
		AttrCompanyID.String(companyID.String()),
		AttrDirection.String(direction),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// CompanyProvider provides company IDs for periodic metrics collection.
type CompanyProvider interface {
	GetActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects balance metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (lm *LedgerMetrics) StartPeriodicCollection(ctx context.Context, companyProvider CompanyProvider, interval time.Duration) {
	lm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go lm.runPeriodicCollection(ctx, companyProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (lm *LedgerMetrics) runPeriodicCollection(ctx context.Context, companyProvider CompanyProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	lm.collectBalanceMetrics(ctx, companyProvider)

	for {
		select {
		case <-lm.stopChan:
			lm.logger.Info("Stopping periodic ledger metrics collection")
			return
		case <-ctx.Done():
			lm.logger.Info("Context cancelled, stopping periodic ledger metrics collection")
			return
		case <-ticker.C:
			lm.collectBalanceMetrics(ctx, companyProvider)
		}
	}
}

// collectBalanceMetrics collects balance gauge metrics for all companies.
func (lm *LedgerMetrics) collectBalanceMetrics(ctx context.Context, companyProvider CompanyProvider) {
	if lm.balanceProvider == nil {
		lm.logger.Debug("No balance provider configured, skipping balance metrics collection")
		return
	}

	companyIDs, err := companyProvider.GetActiveCompanyIDs(ctx)
	if err != nil {
		lm.logger.Error("Failed to get company IDs for metrics collection", zap.Error(err))
		return
	}

	for _, companyID := range companyIDs {
		lm.collectCompanyBalanceMetrics(ctx, companyID)
	}
}

// collectCompanyBalanceMetrics collects balance metrics for a single company.
func (lm *LedgerMetrics) collectCompanyBalanceMetrics(ctx context.Context, companyID uuid.UUID) {
	// Collect open document counts by direction
	counts, err := lm.balanceProvider.GetOpenDocumentCounts(ctx, companyID)
	if err != nil {
		lm.logger.Warn("Failed to get open document counts for company",
			zap.String("company_id", companyID.String()),
			zap.Error(err),
		)
	} else {
		for direction, count := range counts {
			lm.RecordOpenDocumentCount(ctx, companyID, direction, count)
		}
	}

	// Collect outstanding totals by direction
	totals, err := lm.balanceProvider.GetOutstandingTotals(ctx, companyID)
	if err != nil {
		lm.logger.Warn("Failed to get outstanding totals for company",
			zap.String("company_id", companyID.String()),
			zap.Error(err),
		)
	} else {
		for direction, amount := range totals {
			lm.RecordOutstandingAmount(ctx, companyID, direction, amount)
		}
	}
}

// Stop stops the periodic collection.
func (lm *LedgerMetrics) Stop() {
	lm.stopOnce.Do(func() {
		close(lm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
