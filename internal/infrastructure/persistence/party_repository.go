package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/backend/internal/domain/party"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPartyRepository implements PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByID finds a party by ID
func (r *GormPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Party, error) {
	var model models.PartyModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a party by ID for a specific company
func (r *GormPartyRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*party.Party, error) {
	var model models.PartyModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds by party code for a company
func (r *GormPartyRepository) FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*party.Party, error) {
	var model models.PartyModel
	if err := r.db.WithContext(ctx).
		First(&model, "code = ? AND company_id = ?", code, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCompany finds parties for a company with filtering
func (r *GormPartyRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter party.PartyFilter) ([]party.Party, error) {
	var partyModels []models.PartyModel
	query := r.applyPartyFilter(
		r.db.WithContext(ctx).Where("company_id = ?", companyID),
		filter,
	)

	orderBy := ValidateSortField(filter.OrderBy, PartySortFields, "code")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if filter.OrderBy == "" {
		orderDir = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	if err := query.Find(&partyModels).Error; err != nil {
		return nil, err
	}
	parties := make([]party.Party, len(partyModels))
	for i, model := range partyModels {
		parties[i] = *model.ToDomain()
	}
	return parties, nil
}

// Save creates or updates a party
func (r *GormPartyRepository) Save(ctx context.Context, p *party.Party) error {
	var model models.PartyModel
	model.FromDomain(p)
	return r.db.WithContext(ctx).Save(&model).Error
}

// CountForCompany counts parties for a company with optional filters
func (r *GormPartyRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter party.PartyFilter) (int64, error) {
	var count int64
	query := r.applyPartyFilter(
		r.db.WithContext(ctx).Model(&models.PartyModel{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyPartyFilter applies the filter conditions shared by list and count
func (r *GormPartyRepository) applyPartyFilter(query *gorm.DB, filter party.PartyFilter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		query = query.Where("code ILIKE ? OR name ILIKE ? OR email ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormPartyRepository implements PartyRepository
var _ party.PartyRepository = (*GormPartyRepository)(nil)
