package persistence

import (
	"context"

	"github.com/finbooks/backend/internal/domain/audit"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRepository implements the append-only audit Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append persists an entry. Entries are inserted only, never updated.
func (r *GormAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	var model models.AuditLogModel
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Ensure GormAuditRepository implements audit.Repository
var _ audit.Repository = (*GormAuditRepository)(nil)
