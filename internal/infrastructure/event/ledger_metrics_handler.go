package event

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
)

// LedgerMetricsHandler increments the business counters from settlement
// domain events. Subscribing it to the event bus is what turns document,
// payment, allocation and period activity into metrics.
type LedgerMetricsHandler struct {
	metrics *telemetry.LedgerMetrics
}

// NewLedgerMetricsHandler creates a handler feeding the given metrics
func NewLedgerMetricsHandler(metrics *telemetry.LedgerMetrics) *LedgerMetricsHandler {
	return &LedgerMetricsHandler{metrics: metrics}
}

// EventTypes returns the settlement events this handler counts
func (h *LedgerMetricsHandler) EventTypes() []string {
	return []string{
		"DocumentCreated",
		"DocumentSettled",
		"DocumentReversed",
		"PaymentRecorded",
		"AllocationCreated",
		"PeriodLocked",
		"PeriodUnlocked",
	}
}

// Handle translates one domain event into counter increments. Unrecognized
// events are ignored so new event types never break metrics collection.
func (h *LedgerMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.DocumentCreatedEvent:
		h.metrics.RecordDocumentWithAmount(ctx, e.CompanyID(),
			string(e.DocumentType), string(e.Direction), e.TotalAmount)
	case *ledger.DocumentSettledEvent:
		h.metrics.RecordDocumentSettled(ctx, e.CompanyID(), string(e.DocumentType))
	case *ledger.DocumentReversedEvent:
		h.metrics.RecordReversal(ctx, e.CompanyID(), string(e.DocumentType))
	case *ledger.PaymentRecordedEvent:
		h.metrics.RecordPayment(ctx, e.CompanyID(), string(e.PaymentType), string(e.Direction))
	case *ledger.AllocationCreatedEvent:
		h.metrics.RecordAllocation(ctx, e.CompanyID())
	case *ledger.PeriodLockedEvent:
		h.metrics.RecordPeriodLock(ctx, e.CompanyID(),
			formatPeriod(e.Year, e.Month), telemetry.PeriodActionLock)
	case *ledger.PeriodUnlockedEvent:
		h.metrics.RecordPeriodLock(ctx, e.CompanyID(),
			formatPeriod(e.Year, e.Month), telemetry.PeriodActionUnlock)
	}
	return nil
}

func formatPeriod(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

var _ shared.EventHandler = (*LedgerMetricsHandler)(nil)
