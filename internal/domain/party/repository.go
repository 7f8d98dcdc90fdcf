package party

import (
	"context"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PartyFilter defines filtering options for party queries
type PartyFilter struct {
	shared.Filter
	Type     *PartyType
	IsActive *bool
}

// PartyRepository defines the interface for party persistence
type PartyRepository interface {
	// FindByID finds a party by ID, nil if missing
	FindByID(ctx context.Context, id uuid.UUID) (*Party, error)

	// FindByIDForCompany finds a party by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Party, error)

	// FindByCode finds by party code for a company
	FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*Party, error)

	// FindAllForCompany finds parties for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter PartyFilter) ([]Party, error)

	// Save creates or updates a party
	Save(ctx context.Context, p *Party) error

	// CountForCompany counts parties for a company with optional filters
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter PartyFilter) (int64, error)
}
