// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBalanceMetricsProvider implements BalanceMetricsProvider using GORM.
// It queries the documents table directly for aggregated metrics.
type GormBalanceMetricsProvider struct {
	db *gorm.DB
}

// NewGormBalanceMetricsProvider creates a new GormBalanceMetricsProvider.
func NewGormBalanceMetricsProvider(db *gorm.DB) *GormBalanceMetricsProvider {
	return &GormBalanceMetricsProvider{db: db}
}

// GetOpenDocumentCounts returns the number of unsettled documents per direction for a company.
func (p *GormBalanceMetricsProvider) GetOpenDocumentCounts(ctx context.Context, companyID uuid.UUID) (map[string]int64, error) {
	type result struct {
		Direction string `gorm:"column:direction"`
		Count     int64  `gorm:"column:count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("documents").
		Select("direction, COUNT(*) as count").
		Where("company_id = ? AND status IN ?", companyID, []string{"PENDING", "PARTIAL"}).
		Group("direction").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(results))
	for _, r := range results {
		m[r.Direction] = r.Count
	}

	return m, nil
}

// GetOutstandingTotals returns the unsettled amount per direction for a company.
// The outstanding amount of a document is its total minus its active allocations.
func (p *GormBalanceMetricsProvider) GetOutstandingTotals(ctx context.Context, companyID uuid.UUID) (map[string]decimal.Decimal, error) {
	type result struct {
		Direction string          `gorm:"column:direction"`
		Total     decimal.Decimal `gorm:"column:total"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("documents d").
		Select("d.direction, COALESCE(SUM(d.total_amount - COALESCE(a.allocated, 0)), 0) as total").
		Joins("LEFT JOIN (SELECT document_id, SUM(amount) AS allocated FROM payment_allocations WHERE status = ? GROUP BY document_id) a ON a.document_id = d.id", "ACTIVE").
		Where("d.company_id = ? AND d.status IN ?", companyID, []string{"PENDING", "PARTIAL"}).
		Group("d.direction").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[string]decimal.Decimal, len(results))
	for _, r := range results {
		m[r.Direction] = r.Total
	}

	return m, nil
}

// GormCompanyProvider implements CompanyProvider using GORM.
type GormCompanyProvider struct {
	db *gorm.DB
}

// NewGormCompanyProvider creates a new GormCompanyProvider.
func NewGormCompanyProvider(db *gorm.DB) *GormCompanyProvider {
	return &GormCompanyProvider{db: db}
}

// GetActiveCompanyIDs returns the distinct company IDs with any documents.
func (p *GormCompanyProvider) GetActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("documents").
		Distinct("company_id").
		Find(&ids).Error

	return ids, err
}
