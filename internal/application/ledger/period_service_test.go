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

func TestPeriodService_LockUnlock(t *testing.T) {
	ctx := context.Background()

	t.Run("never materialized period counts as open", func(t *testing.T) {
		env := newTestEnv()

		locked, err := env.periods.IsLocked(ctx, testCompanyID, 2026, time.March)
		require.NoError(t, err)
		assert.False(t, locked)
	})

	t.Run("lock materializes and locks the period", func(t *testing.T) {
		env := newTestEnv()

		period, err := env.periods.LockPeriod(ctx, testCompanyID, 2026, time.March, testActorID, "month-end close")
		require.NoError(t, err)
		assert.Equal(t, ledger.PeriodStatusLocked, period.Status)

		locked, err := env.periods.IsLocked(ctx, testCompanyID, 2026, time.March)
		require.NoError(t, err)
		assert.True(t, locked)

		require.Len(t, env.state.auditEntries, 1)
		assert.Equal(t, "accounting_period", env.state.auditEntries[0].AuditableType)
	})

	t.Run("locking twice fails", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.periods.LockPeriod(ctx, testCompanyID, 2026, time.March, testActorID, "")
		require.NoError(t, err)

		_, err = env.periods.LockPeriod(ctx, testCompanyID, 2026, time.March, testActorID, "")
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidStatus, shared.ErrorCode(err))
	})

	t.Run("unlock requires reason and an existing period", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.periods.LockPeriod(ctx, testCompanyID, 2026, time.March, testActorID, "")
		require.NoError(t, err)

		_, err = env.periods.UnlockPeriod(ctx, testCompanyID, 2026, time.March, testActorID, "")
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))

		period, err := env.periods.UnlockPeriod(ctx, testCompanyID, 2026, time.March, testActorID, "late invoice")
		require.NoError(t, err)
		assert.Equal(t, ledger.PeriodStatusOpen, period.Status)

		_, err = env.periods.UnlockPeriod(ctx, testCompanyID, 2026, time.April, testActorID, "reason")
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.ErrorCode(err))
	})

	t.Run("unlock reopens mutations in the period", func(t *testing.T) {
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

		_, err = env.periods.UnlockPeriod(ctx, testCompanyID, testDate.Year(), testDate.Month(), testActorID, "late entry")
		require.NoError(t, err)

		env.createInvoice(t, p.ID, 100, testDate)
	})
}

// fakeLockCache records calls so tests can see hits and invalidations
type fakeLockCache struct {
	entries     map[string]bool
	invalidated int
}

func lockKey(companyID uuid.UUID, year int, month time.Month) string {
	return companyID.String() + "/" + time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (c *fakeLockCache) GetLocked(_ context.Context, companyID uuid.UUID, year int, month time.Month) (bool, bool, error) {
	locked, found := c.entries[lockKey(companyID, year, month)]
	return locked, found, nil
}

func (c *fakeLockCache) SetLocked(_ context.Context, companyID uuid.UUID, year int, month time.Month, locked bool) error {
	c.entries[lockKey(companyID, year, month)] = locked
	return nil
}

func (c *fakeLockCache) Invalidate(_ context.Context, companyID uuid.UUID, year int, month time.Month) error {
	delete(c.entries, lockKey(companyID, year, month))
	c.invalidated++
	return nil
}

func TestPeriodService_Cache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	cache := &fakeLockCache{entries: make(map[string]bool)}
	periods := NewPeriodService(&fakeTxScope{repos: env.scope, state: env.state}, cache, nil)

	// Miss fills the cache
	locked, err := periods.IsLocked(ctx, testCompanyID, 2026, time.March)
	require.NoError(t, err)
	assert.False(t, locked)
	assert.Len(t, cache.entries, 1)

	// Lock invalidates, next check sees the new state
	_, err = periods.LockPeriod(ctx, testCompanyID, 2026, time.March, testActorID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	locked, err = periods.IsLocked(ctx, testCompanyID, 2026, time.March)
	require.NoError(t, err)
	assert.True(t, locked)
}
