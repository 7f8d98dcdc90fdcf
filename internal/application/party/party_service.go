package party

import (
	"context"
	"fmt"

	"github.com/finbooks/backend/internal/domain/audit"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/party"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// PartyService manages counterparties: customers, suppliers, employees and
// the rest. Parties are never hard-deleted because documents and payments
// keep referencing them.
type PartyService struct {
	partyRepo    party.PartyRepository
	documentRepo ledger.DocumentRepository
	auditRepo    audit.Repository
	sequences    ledger.SequenceGenerator
}

// NewPartyService creates a new PartyService
func NewPartyService(
	partyRepo party.PartyRepository,
	documentRepo ledger.DocumentRepository,
	auditRepo audit.Repository,
	sequences ledger.SequenceGenerator,
) *PartyService {
	return &PartyService{
		partyRepo:    partyRepo,
		documentRepo: documentRepo,
		auditRepo:    auditRepo,
		sequences:    sequences,
	}
}

// CreatePartyRequest represents a request to create a party
type CreatePartyRequest struct {
	CompanyID uuid.UUID
	BranchID  *uuid.UUID
	Type      party.PartyType
	Name      string
	Email     string
	Phone     string
	Address   string
	TaxID     string
	Remark    string
	ActorID   uuid.UUID
}

// CreateParty creates an active party with a generated per-type code
func (s *PartyService) CreateParty(ctx context.Context, req CreatePartyRequest) (*party.Party, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "create")
	defer span.End()

	telemetry.SetAttributes(span,
		"company_id", req.CompanyID.String(),
		"party_type", string(req.Type),
	)

	if req.ActorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Actor ID is required")
	}

	seq, err := s.sequences.Next(ctx, ledger.SequenceScope{
		CompanyID: req.CompanyID,
		Kind:      "PARTY_" + string(req.Type),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to generate party code: %w", err)
	}
	code := fmt.Sprintf("%.3s-%04d", string(req.Type), seq)

	p, err := party.NewParty(req.CompanyID, req.BranchID, code, req.Type, req.Name)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	p.Email = req.Email
	p.Phone = req.Phone
	p.Address = req.Address
	p.TaxID = req.TaxID
	p.Remark = req.Remark
	p.CreatedBy = &req.ActorID

	if err := s.partyRepo.Save(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save party: %w", err)
	}

	entry, err := audit.NewEntry(req.CompanyID, "party", p.ID, audit.ActionCreate, nil, p, req.ActorID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	return p, nil
}

// UpdatePartyRequest represents a request to update a party's details
type UpdatePartyRequest struct {
	CompanyID uuid.UUID
	PartyID   uuid.UUID
	Name      string
	Email     string
	Phone     string
	Address   string
	ActorID   uuid.UUID
}

// UpdateParty updates name and contact details
func (s *PartyService) UpdateParty(ctx context.Context, req UpdatePartyRequest) (*party.Party, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "update")
	defer span.End()

	p, err := s.loadParty(ctx, req.CompanyID, req.PartyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.Name != "" {
		if err := p.Rename(req.Name); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	p.UpdateContact(req.Email, req.Phone, req.Address)

	if err := s.partyRepo.Save(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save party: %w", err)
	}
	return p, nil
}

// DeactivateParty marks the party inactive; new documents and payments can
// no longer reference it
func (s *PartyService) DeactivateParty(ctx context.Context, companyID, partyID, actorID uuid.UUID) (*party.Party, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "deactivate")
	defer span.End()

	p, err := s.loadParty(ctx, companyID, partyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := p.Deactivate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.partyRepo.Save(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save party: %w", err)
	}

	entry, err := audit.NewEntry(companyID, "party", p.ID, audit.ActionStatusChange,
		map[string]bool{"is_active": true}, map[string]bool{"is_active": false}, actorID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}
	return p, nil
}

// ActivateParty re-enables an inactive party
func (s *PartyService) ActivateParty(ctx context.Context, companyID, partyID, actorID uuid.UUID) (*party.Party, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "activate")
	defer span.End()

	p, err := s.loadParty(ctx, companyID, partyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := p.Activate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.partyRepo.Save(ctx, p); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save party: %w", err)
	}

	entry, err := audit.NewEntry(companyID, "party", p.ID, audit.ActionStatusChange,
		map[string]bool{"is_active": false}, map[string]bool{"is_active": true}, actorID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}
	return p, nil
}

// GetParty returns a party by ID
func (s *PartyService) GetParty(ctx context.Context, companyID, partyID uuid.UUID) (*party.Party, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "get")
	defer span.End()

	p, err := s.loadParty(ctx, companyID, partyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return p, nil
}

// ListParties returns a page of parties matching the filter
func (s *PartyService) ListParties(ctx context.Context, companyID uuid.UUID, filter party.PartyFilter) (*shared.Paginated[party.Party], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "list")
	defer span.End()

	parties, err := s.partyRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}
	total, err := s.partyRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count parties: %w", err)
	}
	page := shared.NewPaginated(parties, total, filter.Page, filter.PageSize)
	return &page, nil
}

// BalanceSummary derives the party's position from its open documents:
// receivable and payable sums of unpaid amounts, and their difference
func (s *PartyService) BalanceSummary(ctx context.Context, companyID, partyID uuid.UUID) (*party.BalanceSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "balance_summary")
	defer span.End()

	if _, err := s.loadParty(ctx, companyID, partyID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	receivable, err := s.documentRepo.SumUnpaidByParty(ctx, companyID, partyID, ledger.DirectionReceivable)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum receivables: %w", err)
	}
	payable, err := s.documentRepo.SumUnpaidByParty(ctx, companyID, partyID, ledger.DirectionPayable)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum payables: %w", err)
	}

	summary := party.NewBalanceSummary(partyID, receivable, payable)
	return &summary, nil
}

func (s *PartyService) loadParty(ctx context.Context, companyID, partyID uuid.UUID) (*party.Party, error) {
	p, err := s.partyRepo.FindByIDForCompany(ctx, companyID, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load party: %w", err)
	}
	if p == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound,
			fmt.Sprintf("Party %s not found", partyID))
	}
	return p, nil
}
