package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Action classifies what happened to the audited entity
type Action string

const (
	ActionCreate       Action = "CREATE"
	ActionLock         Action = "LOCK"
	ActionUnlock       Action = "UNLOCK"
	ActionStatusChange Action = "STATUS_CHANGE"
)

// IsValid checks if the action is valid
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionLock, ActionUnlock, ActionStatusChange:
		return true
	}
	return false
}

// Entry is one append-only audit record. The core only writes entries;
// nothing in the core reads them back.
type Entry struct {
	ID            uuid.UUID       `json:"id"`
	CompanyID     uuid.UUID       `json:"company_id"`
	AuditableType string          `json:"auditable_type"`
	AuditableID   uuid.UUID       `json:"auditable_id"`
	Action        Action          `json:"action"`
	OldValues     json.RawMessage `json:"old_values,omitempty"`
	NewValues     json.RawMessage `json:"new_values,omitempty"`
	ActorID       uuid.UUID       `json:"actor_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewEntry creates an audit entry with JSON snapshots of the old and new
// values. A nil snapshot is stored as null, not an empty object.
func NewEntry(companyID uuid.UUID, auditableType string, auditableID uuid.UUID, action Action, oldValues, newValues any, actorID uuid.UUID) (*Entry, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Company ID cannot be empty")
	}
	if auditableType == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Auditable type cannot be empty")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Audit action is not valid")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Actor ID is required")
	}

	entry := &Entry{
		ID:            uuid.New(),
		CompanyID:     companyID,
		AuditableType: auditableType,
		AuditableID:   auditableID,
		Action:        action,
		ActorID:       actorID,
		CreatedAt:     time.Now(),
	}

	if oldValues != nil {
		data, err := json.Marshal(oldValues)
		if err != nil {
			return nil, err
		}
		entry.OldValues = data
	}
	if newValues != nil {
		data, err := json.Marshal(newValues)
		if err != nil {
			return nil, err
		}
		entry.NewValues = data
	}

	return entry, nil
}

// Repository is the append-only sink for audit entries
type Repository interface {
	// Append persists an entry; entries are never updated or deleted
	Append(ctx context.Context, entry *Entry) error
}
