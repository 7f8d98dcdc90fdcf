package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountingPeriodRepository implements AccountingPeriodRepository using GORM
type GormAccountingPeriodRepository struct {
	db *gorm.DB
}

// NewGormAccountingPeriodRepository creates a new GormAccountingPeriodRepository
func NewGormAccountingPeriodRepository(db *gorm.DB) *GormAccountingPeriodRepository {
	return &GormAccountingPeriodRepository{db: db}
}

// FindByID finds a period by ID
func (r *GormAccountingPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.AccountingPeriod, error) {
	var model models.AccountingPeriodModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMonth finds the period for (company, year, month)
func (r *GormAccountingPeriodRepository) FindByMonth(ctx context.Context, companyID uuid.UUID, year int, month time.Month) (*ledger.AccountingPeriod, error) {
	var model models.AccountingPeriodModel
	if err := r.db.WithContext(ctx).
		First(&model, "company_id = ? AND year = ? AND month = ?", companyID, year, int(month)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOrCreateForDate resolves the period covering the date, lazily creating
// an OPEN one. The insert goes through ON CONFLICT DO NOTHING on the
// (company, year, month) unique index, so concurrent callers converge on a
// single row and the loser re-reads whatever won.
func (r *GormAccountingPeriodRepository) FindOrCreateForDate(ctx context.Context, companyID uuid.UUID, date time.Time) (*ledger.AccountingPeriod, error) {
	existing, err := r.FindByMonth(ctx, companyID, date.Year(), date.Month())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	period, err := ledger.NewAccountingPeriodForDate(companyID, date)
	if err != nil {
		return nil, err
	}

	var model models.AccountingPeriodModel
	model.FromDomain(period)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "year"}, {Name: "month"}},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return r.FindByMonth(ctx, companyID, date.Year(), date.Month())
	}
	return period, nil
}

// FindAllForCompany lists periods for a company, newest first by default
func (r *GormAccountingPeriodRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ledger.AccountingPeriod, error) {
	var periodModels []models.AccountingPeriodModel
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, PeriodSortFields, "year")
		orderDir := ValidateSortOrder(filter.OrderDir)
		query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))
	} else {
		query = query.Order("year DESC, month DESC")
	}

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	if err := query.Find(&periodModels).Error; err != nil {
		return nil, err
	}
	periods := make([]ledger.AccountingPeriod, len(periodModels))
	for i, model := range periodModels {
		periods[i] = *model.ToDomain()
	}
	return periods, nil
}

// Save creates or updates a period
func (r *GormAccountingPeriodRepository) Save(ctx context.Context, period *ledger.AccountingPeriod) error {
	var model models.AccountingPeriodModel
	model.FromDomain(period)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with an optimistic version check. Matches the loaded
// version and bumps it in SQL, same as the document repository.
func (r *GormAccountingPeriodRepository) SaveWithLock(ctx context.Context, period *ledger.AccountingPeriod) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccountingPeriodModel{}).
		Where("id = ? AND version = ?", period.ID, period.Version).
		Updates(map[string]interface{}{
			"status":     period.Status,
			"locked_by":  period.LockedBy,
			"locked_at":  period.LockedAt,
			"lock_notes": period.LockNotes,
			"version":    gorm.Expr("version + 1"),
			"updated_at": period.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Accounting period was modified by another transaction")
	}
	period.IncrementVersion()
	return nil
}

// Ensure GormAccountingPeriodRepository implements AccountingPeriodRepository
var _ ledger.AccountingPeriodRepository = (*GormAccountingPeriodRepository)(nil)
