package models

import (
	"time"

	"github.com/finbooks/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// AuditLogModel is the persistence model for an audit entry. Rows are
// append-only; there is no UpdatedAt column on purpose.
type AuditLogModel struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key"`
	CompanyID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	AuditableType string       `gorm:"type:varchar(50);not null;index:idx_audit_auditable"`
	AuditableID   uuid.UUID    `gorm:"type:uuid;not null;index:idx_audit_auditable"`
	Action        audit.Action `gorm:"type:varchar(20);not null;index"`
	OldValues     []byte       `gorm:"type:jsonb"`
	NewValues     []byte       `gorm:"type:jsonb"`
	ActorID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time    `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Entry.
func (m *AuditLogModel) ToDomain() *audit.Entry {
	return &audit.Entry{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		AuditableType: m.AuditableType,
		AuditableID:   m.AuditableID,
		Action:        m.Action,
		OldValues:     m.OldValues,
		NewValues:     m.NewValues,
		ActorID:       m.ActorID,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain audit Entry.
func (m *AuditLogModel) FromDomain(entry *audit.Entry) {
	m.ID = entry.ID
	m.CompanyID = entry.CompanyID
	m.AuditableType = entry.AuditableType
	m.AuditableID = entry.AuditableID
	m.Action = entry.Action
	m.OldValues = entry.OldValues
	m.NewValues = entry.NewValues
	m.ActorID = entry.ActorID
	m.CreatedAt = entry.CreatedAt
}
