package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/audit"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// PeriodLockCache is a read-through cache for period lock state. Lock checks
// run on every mutating operation, so reads far outnumber writes. A cache
// failure is never fatal; callers fall back to the repository.
type PeriodLockCache interface {
	// GetLocked returns the cached lock state; found is false on a miss
	GetLocked(ctx context.Context, companyID uuid.UUID, year int, month time.Month) (locked bool, found bool, err error)
	// SetLocked stores the lock state
	SetLocked(ctx context.Context, companyID uuid.UUID, year int, month time.Month, locked bool) error
	// Invalidate drops the cached state
	Invalidate(ctx context.Context, companyID uuid.UUID, year int, month time.Month) error
}

// PeriodService locks and unlocks accounting periods. Locking a period
// freezes every dated mutation inside it: no new documents, payments or
// allocation changes until someone with the authority unlocks it again.
type PeriodService struct {
	scope  TransactionScope
	cache  PeriodLockCache // Optional
	events shared.EventPublisher
}

// NewPeriodService creates a new PeriodService. Cache and publisher may be nil.
func NewPeriodService(scope TransactionScope, cache PeriodLockCache, events shared.EventPublisher) *PeriodService {
	return &PeriodService{scope: scope, cache: cache, events: events}
}

// IsLocked reports whether the period is locked. A period that was never
// materialized counts as open.
func (s *PeriodService) IsLocked(ctx context.Context, companyID uuid.UUID, year int, month time.Month) (bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "period", "is_locked")
	defer span.End()

	if s.cache != nil {
		if locked, found, err := s.cache.GetLocked(ctx, companyID, year, month); err == nil && found {
			return locked, nil
		}
	}

	var locked bool
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		period, err := repos.PeriodRepo().FindByMonth(ctx, companyID, year, month)
		if err != nil {
			return fmt.Errorf("failed to load period: %w", err)
		}
		locked = period != nil && period.IsLocked()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return false, err
	}

	if s.cache != nil {
		// Best effort; a failed fill just means the next check hits the database
		_ = s.cache.SetLocked(ctx, companyID, year, month, locked)
	}
	return locked, nil
}

// LockPeriod locks the period for (year, month), creating it if it was never
// materialized. Fails if it is already locked.
func (s *PeriodService) LockPeriod(ctx context.Context, companyID uuid.UUID, year int, month time.Month, actorID uuid.UUID, notes string) (*ledger.AccountingPeriod, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "period", "lock")
	defer span.End()

	telemetry.SetAttributes(span,
		"company_id", companyID.String(),
		"period", fmt.Sprintf("%04d-%02d", year, int(month)),
	)

	var locked *ledger.AccountingPeriod
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		period, err := s.findOrCreatePeriod(ctx, repos, companyID, year, month)
		if err != nil {
			return err
		}

		if err := period.Lock(actorID, notes); err != nil {
			return err
		}
		if err := repos.PeriodRepo().SaveWithLock(ctx, period); err != nil {
			return fmt.Errorf("failed to save period: %w", err)
		}

		entry, err := audit.NewEntry(companyID, "accounting_period", period.ID, audit.ActionLock,
			map[string]string{"status": string(ledger.PeriodStatusOpen)},
			map[string]string{"status": string(ledger.PeriodStatusLocked), "notes": notes},
			actorID)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		locked = period
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, companyID, year, month)
	}
	publishEvents(ctx, s.events, locked)
	return locked, nil
}

// UnlockPeriod reopens a locked period. A reason is mandatory; it lands in
// the audit trail next to who unlocked and when.
func (s *PeriodService) UnlockPeriod(ctx context.Context, companyID uuid.UUID, year int, month time.Month, actorID uuid.UUID, reason string) (*ledger.AccountingPeriod, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "period", "unlock")
	defer span.End()

	telemetry.SetAttributes(span,
		"company_id", companyID.String(),
		"period", fmt.Sprintf("%04d-%02d", year, int(month)),
	)

	var unlocked *ledger.AccountingPeriod
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		period, err := repos.PeriodRepo().FindByMonth(ctx, companyID, year, month)
		if err != nil {
			return fmt.Errorf("failed to load period: %w", err)
		}
		if period == nil {
			return shared.NewDomainError(shared.CodeNotFound,
				fmt.Sprintf("Accounting period %04d-%02d not found", year, int(month)))
		}

		if err := period.Unlock(actorID, reason); err != nil {
			return err
		}
		if err := repos.PeriodRepo().SaveWithLock(ctx, period); err != nil {
			return fmt.Errorf("failed to save period: %w", err)
		}

		entry, err := audit.NewEntry(companyID, "accounting_period", period.ID, audit.ActionUnlock,
			map[string]string{"status": string(ledger.PeriodStatusLocked)},
			map[string]string{"status": string(ledger.PeriodStatusOpen), "reason": reason},
			actorID)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		unlocked = period
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, companyID, year, month)
	}
	publishEvents(ctx, s.events, unlocked)
	return unlocked, nil
}

// ListPeriods lists the materialized periods of a company
func (s *PeriodService) ListPeriods(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ledger.AccountingPeriod, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "period", "list")
	defer span.End()

	var periods []ledger.AccountingPeriod
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		periods, err = repos.PeriodRepo().FindAllForCompany(ctx, companyID, filter)
		if err != nil {
			return fmt.Errorf("failed to list periods: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return periods, nil
}

func (s *PeriodService) findOrCreatePeriod(ctx context.Context, repos TransactionalRepositories, companyID uuid.UUID, year int, month time.Month) (*ledger.AccountingPeriod, error) {
	period, err := repos.PeriodRepo().FindByMonth(ctx, companyID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load period: %w", err)
	}
	if period != nil {
		return period, nil
	}
	period, err = ledger.NewAccountingPeriod(companyID, year, month)
	if err != nil {
		return nil, err
	}
	if err := repos.PeriodRepo().Save(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to create period: %w", err)
	}
	return period, nil
}
