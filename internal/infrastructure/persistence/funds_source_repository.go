package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashboxRepository implements CashboxRepository using GORM
type GormCashboxRepository struct {
	db *gorm.DB
}

// NewGormCashboxRepository creates a new GormCashboxRepository
func NewGormCashboxRepository(db *gorm.DB) *GormCashboxRepository {
	return &GormCashboxRepository{db: db}
}

// FindByID finds a cashbox by ID
func (r *GormCashboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Cashbox, error) {
	var model models.CashboxModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a cashbox by ID for a specific company
func (r *GormCashboxRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.Cashbox, error) {
	var model models.CashboxModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCompany lists cashboxes for a company
func (r *GormCashboxRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ledger.Cashbox, error) {
	var cashboxModels []models.CashboxModel
	query := applyFundsSourceFilter(
		r.db.WithContext(ctx).Where("company_id = ?", companyID),
		filter,
	)
	if err := query.Find(&cashboxModels).Error; err != nil {
		return nil, err
	}
	cashboxes := make([]ledger.Cashbox, len(cashboxModels))
	for i, model := range cashboxModels {
		cashboxes[i] = *model.ToDomain()
	}
	return cashboxes, nil
}

// Save creates or updates a cashbox
func (r *GormCashboxRepository) Save(ctx context.Context, cashbox *ledger.Cashbox) error {
	var model models.CashboxModel
	model.FromDomain(cashbox)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormBankAccountRepository implements BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID finds a bank account by ID
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.BankAccount, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a bank account by ID for a specific company
func (r *GormBankAccountRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.BankAccount, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCompany lists bank accounts for a company
func (r *GormBankAccountRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ledger.BankAccount, error) {
	var accountModels []models.BankAccountModel
	query := applyFundsSourceFilter(
		r.db.WithContext(ctx).Where("company_id = ?", companyID),
		filter,
	)
	if err := query.Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]ledger.BankAccount, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, nil
}

// Save creates or updates a bank account
func (r *GormBankAccountRepository) Save(ctx context.Context, account *ledger.BankAccount) error {
	var model models.BankAccountModel
	model.FromDomain(account)
	return r.db.WithContext(ctx).Save(&model).Error
}

// applyFundsSourceFilter applies ordering, search and pagination shared by
// cashbox and bank account listings
func applyFundsSourceFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("code ILIKE ? OR name ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	orderBy := ValidateSortField(filter.OrderBy, FundsSourceSortFields, "code")
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
	return query
}

// Ensure implementations satisfy the repository interfaces
var (
	_ ledger.CashboxRepository     = (*GormCashboxRepository)(nil)
	_ ledger.BankAccountRepository = (*GormBankAccountRepository)(nil)
)
