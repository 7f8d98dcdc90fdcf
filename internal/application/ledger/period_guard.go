package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ensureOpenPeriod resolves the accounting period covering the date, lazily
// creating an OPEN one, and fails with a PERIOD_LOCKED error if it is locked.
// Every mutating operation calls this before touching anything dated: creating
// documents, recording payments, allocating, cancelling allocations and
// reversing documents are all gated on the period of the date they affect.
func ensureOpenPeriod(ctx context.Context, repos TransactionalRepositories, companyID uuid.UUID, date time.Time) (*ledger.AccountingPeriod, error) {
	period, err := repos.PeriodRepo().FindOrCreateForDate(ctx, companyID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accounting period: %w", err)
	}
	if period.IsLocked() {
		return nil, shared.NewDomainError(shared.CodePeriodLocked,
			fmt.Sprintf("Accounting period %s is locked", period.Label()))
	}
	return period, nil
}
