package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a payment by ID for a specific company
func (r *GormPaymentRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds by payment number for a company
func (r *GormPaymentRepository) FindByNumber(ctx context.Context, companyID uuid.UUID, number string) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		First(&model, "payment_number = ? AND company_id = ?", number, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCompany finds payments for a company with filtering
func (r *GormPaymentRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter ledger.PaymentFilter) ([]ledger.Payment, error) {
	var paymentModels []models.PaymentModel
	query := r.applyPaymentFilter(
		r.db.WithContext(ctx).Where("company_id = ?", companyID),
		filter,
	)

	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "payment_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]ledger.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)
	return r.db.WithContext(ctx).Save(&model).Error
}

// CountForCompany counts payments for a company with optional filters
func (r *GormPaymentRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter ledger.PaymentFilter) (int64, error) {
	var count int64
	query := r.applyPaymentFilter(
		r.db.WithContext(ctx).Model(&models.PaymentModel{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CashboxBalance derives a cashbox balance from confirmed payments. Direct
// payments count by direction; transfer legs count positive on the To side
// and negative on the From side.
func (r *GormPaymentRepository) CashboxBalance(ctx context.Context, companyID, cashboxID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Balance decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(
			CASE
				WHEN cashbox_id = @source AND direction = 'IN' THEN amount
				WHEN cashbox_id = @source AND direction = 'OUT' THEN -amount
				WHEN to_cashbox_id = @source THEN amount
				WHEN from_cashbox_id = @source THEN -amount
				ELSE 0
			END
		), 0) AS balance
		FROM payments
		WHERE company_id = @company
		  AND status = @status
		  AND (cashbox_id = @source OR to_cashbox_id = @source OR from_cashbox_id = @source)`,
		map[string]interface{}{
			"company": companyID,
			"source":  cashboxID,
			"status":  ledger.PaymentStatusConfirmed,
		},
	).Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Balance, nil
}

// BankAccountBalance derives a bank account balance the same way
func (r *GormPaymentRepository) BankAccountBalance(ctx context.Context, companyID, bankAccountID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Balance decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(
			CASE
				WHEN bank_account_id = @source AND direction = 'IN' THEN amount
				WHEN bank_account_id = @source AND direction = 'OUT' THEN -amount
				WHEN to_bank_account_id = @source THEN amount
				WHEN from_bank_account_id = @source THEN -amount
				ELSE 0
			END
		), 0) AS balance
		FROM payments
		WHERE company_id = @company
		  AND status = @status
		  AND (bank_account_id = @source OR to_bank_account_id = @source OR from_bank_account_id = @source)`,
		map[string]interface{}{
			"company": companyID,
			"source":  bankAccountID,
			"status":  ledger.PaymentStatusConfirmed,
		},
	).Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Balance, nil
}

// applyPaymentFilter applies the filter conditions shared by list and count
func (r *GormPaymentRepository) applyPaymentFilter(query *gorm.DB, filter ledger.PaymentFilter) *gorm.DB {
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("payment_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("payment_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("payment_number ILIKE ? OR reference ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
