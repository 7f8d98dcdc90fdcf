package persistence

import (
	"context"
	"errors"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAllocationRepository implements AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByID finds an allocation by ID
func (r *GormAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PaymentAllocation, error) {
	var model models.PaymentAllocationModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByDocument returns the ACTIVE allocations targeting a document
func (r *GormAllocationRepository) FindActiveByDocument(ctx context.Context, documentID uuid.UUID) ([]ledger.PaymentAllocation, error) {
	return r.findAllocations(ctx, "document_id = ? AND status = ?", documentID, ledger.AllocationStatusActive)
}

// FindActiveByPayment returns the ACTIVE allocations drawn on a payment
func (r *GormAllocationRepository) FindActiveByPayment(ctx context.Context, paymentID uuid.UUID) ([]ledger.PaymentAllocation, error) {
	return r.findAllocations(ctx, "payment_id = ? AND status = ?", paymentID, ledger.AllocationStatusActive)
}

// FindByPayment returns all allocations of a payment regardless of status
func (r *GormAllocationRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]ledger.PaymentAllocation, error) {
	return r.findAllocations(ctx, "payment_id = ?", paymentID)
}

// Save creates or updates an allocation
func (r *GormAllocationRepository) Save(ctx context.Context, allocation *ledger.PaymentAllocation) error {
	var model models.PaymentAllocationModel
	model.FromDomain(allocation)
	return r.db.WithContext(ctx).Save(&model).Error
}

func (r *GormAllocationRepository) findAllocations(ctx context.Context, condition string, args ...interface{}) ([]ledger.PaymentAllocation, error) {
	var allocationModels []models.PaymentAllocationModel
	if err := r.db.WithContext(ctx).
		Where(condition, args...).
		Order("created_at ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	allocations := make([]ledger.PaymentAllocation, len(allocationModels))
	for i, model := range allocationModels {
		allocations[i] = *model.ToDomain()
	}
	return allocations, nil
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ ledger.AllocationRepository = (*GormAllocationRepository)(nil)
