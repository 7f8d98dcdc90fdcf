package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/audit"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationService creates and manages documents: the receivables and
// payables that payments are later allocated against.
type ObligationService struct {
	scope  TransactionScope
	events shared.EventPublisher
}

// NewObligationService creates a new ObligationService. The publisher may
// be nil; events are then dropped.
func NewObligationService(scope TransactionScope, events shared.EventPublisher) *ObligationService {
	return &ObligationService{scope: scope, events: events}
}

// DocumentLineRequest carries one caller-supplied line item
type DocumentLineRequest struct {
	Description     string           `json:"description" binding:"required"`
	Quantity        decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount,omitempty"`
	TaxRate         *decimal.Decimal `json:"tax_rate,omitempty"`
	TaxAmount       *decimal.Decimal `json:"tax_amount,omitempty"`
}

// CreateDocumentRequest represents a request to create a document
type CreateDocumentRequest struct {
	CompanyID    uuid.UUID
	BranchID     *uuid.UUID
	Type         ledger.DocumentType
	Direction    ledger.DocumentDirection
	PartyID      uuid.UUID
	DocumentDate time.Time
	DueDate      time.Time
	TotalAmount  decimal.Decimal
	Description  string
	Lines        []DocumentLineRequest
	ActorID      uuid.UUID
}

// DocumentResult is a document together with its derived balances
type DocumentResult struct {
	Document     *ledger.Document `json:"document"`
	PaidAmount   decimal.Decimal  `json:"paid_amount"`
	UnpaidAmount decimal.Decimal  `json:"unpaid_amount"`
}

// CreateDocument creates a document in its date's accounting period. The
// period must be open. The document number is generated from the per-type
// monthly sequence; when lines are present their computed sum overwrites a
// header total that drifts beyond the rounding tolerance.
func (s *ObligationService) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*DocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create")
	defer span.End()

	telemetry.SetAttributes(span,
		"company_id", req.CompanyID.String(),
		"document_type", string(req.Type),
		"party_id", req.PartyID.String(),
	)

	if req.ActorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Actor ID is required")
	}

	var result *DocumentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := ensureOpenPeriod(ctx, repos, req.CompanyID, req.DocumentDate); err != nil {
			return err
		}

		p, err := repos.PartyRepo().FindByIDForCompany(ctx, req.CompanyID, req.PartyID)
		if err != nil {
			return fmt.Errorf("failed to load party: %w", err)
		}
		if p == nil {
			return shared.NewDomainError(shared.CodeNotFound,
				fmt.Sprintf("Party %s not found", req.PartyID))
		}
		if !p.IsActive {
			return shared.NewDomainError(shared.CodeInvalidStatus,
				fmt.Sprintf("Party %s is inactive", p.Code))
		}

		seq, err := repos.Sequences().Next(ctx, ledger.SequenceScope{
			CompanyID: req.CompanyID,
			Kind:      string(req.Type),
			Year:      req.DocumentDate.Year(),
			Month:     req.DocumentDate.Month(),
		})
		if err != nil {
			return fmt.Errorf("failed to generate document number: %w", err)
		}
		number := ledger.FormatDocumentNumber(req.Type, req.DocumentDate.Year(), req.DocumentDate.Month(), seq)

		total := valueobject.NewMoneyAmount(req.TotalAmount)
		doc, err := ledger.NewDocument(req.CompanyID, req.BranchID, number, req.Type,
			req.Direction, req.PartyID, req.DocumentDate, req.DueDate, total)
		if err != nil {
			return err
		}
		doc.Description = req.Description
		doc.CreatedBy = &req.ActorID

		for _, line := range req.Lines {
			if _, err := doc.AddLine(ledger.DocumentLineInput{
				Description:     line.Description,
				Quantity:        line.Quantity,
				UnitPrice:       line.UnitPrice,
				DiscountPercent: line.DiscountPercent,
				DiscountAmount:  line.DiscountAmount,
				TaxRate:         line.TaxRate,
				TaxAmount:       line.TaxAmount,
			}); err != nil {
				return err
			}
		}
		if len(doc.Lines) > 0 {
			doc.SyncTotalWithLines()
		}

		if err := repos.DocumentRepo().Save(ctx, doc); err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}

		entry, err := audit.NewEntry(req.CompanyID, "document", doc.ID, audit.ActionCreate, nil, doc, req.ActorID)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		result = &DocumentResult{
			Document:     doc,
			PaidAmount:   decimal.Zero,
			UnpaidAmount: doc.TotalAmount,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	publishEvents(ctx, s.events, result.Document)

	telemetry.SetAttributes(span, "document_number", result.Document.DocumentNumber)
	return result, nil
}

// GetDocument returns a document with balances derived from its active allocations
func (s *ObligationService) GetDocument(ctx context.Context, companyID, documentID uuid.UUID) (*DocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "get")
	defer span.End()

	var result *DocumentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, allocations, err := loadDocumentWithAllocations(ctx, repos, companyID, documentID)
		if err != nil {
			return err
		}
		balances := ledger.DeriveDocumentBalances(doc, allocations)
		result = &DocumentResult{
			Document:     doc,
			PaidAmount:   balances.PaidAmount,
			UnpaidAmount: balances.UnpaidAmount,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// ListDocuments returns a page of documents matching the filter. Balances are
// not derived here; list rows carry the stored status only.
func (s *ObligationService) ListDocuments(ctx context.Context, companyID uuid.UUID, filter ledger.DocumentFilter) (*shared.Paginated[ledger.Document], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "list")
	defer span.End()

	var page *shared.Paginated[ledger.Document]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		docs, err := repos.DocumentRepo().FindAllForCompany(ctx, companyID, filter)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		total, err := repos.DocumentRepo().CountForCompany(ctx, companyID, filter)
		if err != nil {
			return fmt.Errorf("failed to count documents: %w", err)
		}
		p := shared.NewPaginated(docs, total, filter.Page, filter.PageSize)
		page = &p
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return page, nil
}

// OutstandingDocuments returns a party's PENDING and PARTIAL documents with
// derived balances, oldest due first. This is the allocation picklist.
func (s *ObligationService) OutstandingDocuments(ctx context.Context, companyID, partyID uuid.UUID) ([]DocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "outstanding")
	defer span.End()

	var results []DocumentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		docs, err := repos.DocumentRepo().FindOutstandingByParty(ctx, companyID, partyID)
		if err != nil {
			return fmt.Errorf("failed to load outstanding documents: %w", err)
		}
		results = make([]DocumentResult, 0, len(docs))
		for i := range docs {
			doc := &docs[i]
			allocations, err := repos.AllocationRepo().FindActiveByDocument(ctx, doc.ID)
			if err != nil {
				return fmt.Errorf("failed to load allocations: %w", err)
			}
			balances := ledger.DeriveDocumentBalances(doc, allocations)
			results = append(results, DocumentResult{
				Document:     doc,
				PaidAmount:   balances.PaidAmount,
				UnpaidAmount: balances.UnpaidAmount,
			})
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return results, nil
}

// CancelDocument soft-cancels a document that has no active allocations.
// The document's period must be open.
func (s *ObligationService) CancelDocument(ctx context.Context, companyID, documentID, actorID uuid.UUID, reason string) (*ledger.Document, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "cancel")
	defer span.End()

	telemetry.SetAttributes(span, "document_id", documentID.String())

	if actorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Actor ID is required")
	}

	var cancelled *ledger.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, allocations, err := loadDocumentWithAllocations(ctx, repos, companyID, documentID)
		if err != nil {
			return err
		}
		if _, err := ensureOpenPeriod(ctx, repos, companyID, doc.DocumentDate); err != nil {
			return err
		}

		oldStatus := doc.Status
		balances := ledger.DeriveDocumentBalances(doc, allocations)
		if err := doc.Cancel(balances.PaidAmount, reason); err != nil {
			return err
		}

		if err := repos.DocumentRepo().SaveWithLock(ctx, doc); err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}

		entry, err := audit.NewEntry(companyID, "document", doc.ID, audit.ActionStatusChange,
			statusSnapshot(oldStatus), statusSnapshot(doc.Status), actorID)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		cancelled = doc
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	publishEvents(ctx, s.events, cancelled)
	return cancelled, nil
}

func loadDocumentWithAllocations(ctx context.Context, repos TransactionalRepositories, companyID, documentID uuid.UUID) (*ledger.Document, []ledger.PaymentAllocation, error) {
	doc, err := repos.DocumentRepo().FindByIDForCompany(ctx, companyID, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return nil, nil, shared.NewDomainError(shared.CodeNotFound,
			fmt.Sprintf("Document %s not found", documentID))
	}
	allocations, err := repos.AllocationRepo().FindActiveByDocument(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load allocations: %w", err)
	}
	return doc, allocations, nil
}

// statusSnapshot shapes a status value for audit old/new columns
func statusSnapshot(status ledger.DocumentStatus) map[string]string {
	return map[string]string{"status": string(status)}
}
