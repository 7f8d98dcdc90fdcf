package persistence

import (
	"context"

	"github.com/finbooks/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormSequenceGenerator implements SequenceGenerator on a counter-row table.
// Each scope owns one row keyed by the canonical scope key; the increment is
// a single upsert so concurrent callers in the same scope serialize on the
// row lock and never observe the same value.
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// Next returns the next sequence number for the scope, starting at 1
func (g *GormSequenceGenerator) Next(ctx context.Context, scope ledger.SequenceScope) (int, error) {
	var value int
	err := g.db.WithContext(ctx).Raw(`
		INSERT INTO number_sequences (scope_key, company_id, kind, value, created_at, updated_at)
		VALUES (?, ?, ?, 1, NOW(), NOW())
		ON CONFLICT (scope_key)
		DO UPDATE SET value = number_sequences.value + 1, updated_at = NOW()
		RETURNING value`,
		scope.Key(), scope.CompanyID, scope.Kind,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Ensure GormSequenceGenerator implements SequenceGenerator
var _ ledger.SequenceGenerator = (*GormSequenceGenerator)(nil)
