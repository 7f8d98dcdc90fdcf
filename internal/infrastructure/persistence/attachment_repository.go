package persistence

import (
	"context"
	"errors"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAttachmentRepository implements AttachmentRepository using GORM
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewGormAttachmentRepository creates a new GormAttachmentRepository
func NewGormAttachmentRepository(db *gorm.DB) *GormAttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// FindByIDForCompany finds an attachment by ID for a specific company
func (r *GormAttachmentRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.Attachment, error) {
	var model models.AttachmentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner lists non-deleted attachments of a document or payment
func (r *GormAttachmentRepository) FindByOwner(ctx context.Context, companyID uuid.UUID, ownerType ledger.AttachmentOwnerType, ownerID uuid.UUID) ([]ledger.Attachment, error) {
	var attachmentModels []models.AttachmentModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND owner_type = ? AND owner_id = ? AND status <> ?",
			companyID, string(ownerType), ownerID, string(ledger.AttachmentStatusDeleted)).
		Order("created_at ASC").
		Find(&attachmentModels).Error; err != nil {
		return nil, err
	}
	attachments := make([]ledger.Attachment, len(attachmentModels))
	for i, model := range attachmentModels {
		attachments[i] = *model.ToDomain()
	}
	return attachments, nil
}

// CountActiveByOwner counts pending and active attachments of an owner
func (r *GormAttachmentRepository) CountActiveByOwner(ctx context.Context, companyID uuid.UUID, ownerType ledger.AttachmentOwnerType, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AttachmentModel{}).
		Where("company_id = ? AND owner_type = ? AND owner_id = ? AND status <> ?",
			companyID, string(ownerType), ownerID, string(ledger.AttachmentStatusDeleted)).
		Count(&count).Error
	return count, err
}

// Save creates or updates an attachment
func (r *GormAttachmentRepository) Save(ctx context.Context, attachment *ledger.Attachment) error {
	var model models.AttachmentModel
	model.FromDomain(attachment)
	return r.db.WithContext(ctx).Save(&model).Error
}

// DeleteForCompany removes the attachment row permanently
func (r *GormAttachmentRepository) DeleteForCompany(ctx context.Context, companyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		Delete(&models.AttachmentModel{}).Error
}
