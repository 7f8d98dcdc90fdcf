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
)

// ReversalService neutralizes documents that were entered wrongly after
// their period closed. Instead of editing history it books a counter-document
// in the current open period for whatever is still unpaid.
type ReversalService struct {
	scope  TransactionScope
	events shared.EventPublisher
}

// NewReversalService creates a new ReversalService. The publisher may be nil.
func NewReversalService(scope TransactionScope, events shared.EventPublisher) *ReversalService {
	return &ReversalService{scope: scope, events: events}
}

// ReverseDocumentRequest represents a request to reverse a document
type ReverseDocumentRequest struct {
	CompanyID    uuid.UUID
	DocumentID   uuid.UUID
	Reason       string
	ReversalDate time.Time // Zero means now
	ActorID      uuid.UUID
}

// ReversalResult holds the reversed original and the counter-document
type ReversalResult struct {
	Original *ledger.Document `json:"original"`
	Reversal *ledger.Document `json:"reversal"`
}

// ReverseDocument books a REVERSAL counter-document for the unpaid remainder
// of the original, pointing the opposite direction, and marks the original
// REVERSED. The reversal lands in the reversal date's period, which must be
// open; the original's period may be locked, that is the whole point.
// Existing allocations on the original stay untouched. A fully paid original
// yields a zero-amount reversal that records the fact without moving money.
func (s *ReversalService) ReverseDocument(ctx context.Context, req ReverseDocumentRequest) (*ReversalResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "reverse")
	defer span.End()

	telemetry.SetAttributes(span,
		"company_id", req.CompanyID.String(),
		"document_id", req.DocumentID.String(),
	)

	if req.ActorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Actor ID is required")
	}
	if req.Reason == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Reversal reason is required")
	}
	reversalDate := req.ReversalDate
	if reversalDate.IsZero() {
		reversalDate = time.Now()
	}

	var result *ReversalResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, allocations, err := loadDocumentWithAllocations(ctx, repos, req.CompanyID, req.DocumentID)
		if err != nil {
			return err
		}
		if _, err := ensureOpenPeriod(ctx, repos, req.CompanyID, reversalDate); err != nil {
			return err
		}

		balances := ledger.DeriveDocumentBalances(original, allocations)

		seq, err := repos.Sequences().Next(ctx, ledger.SequenceScope{
			CompanyID: req.CompanyID,
			Kind:      string(ledger.DocumentTypeReversal),
			Year:      reversalDate.Year(),
			Month:     reversalDate.Month(),
		})
		if err != nil {
			return fmt.Errorf("failed to generate reversal number: %w", err)
		}
		number := ledger.FormatDocumentNumber(ledger.DocumentTypeReversal, reversalDate.Year(), reversalDate.Month(), seq)

		reversal, err := ledger.NewDocument(req.CompanyID, original.BranchID, number,
			ledger.DocumentTypeReversal, original.Direction.Opposite(), original.PartyID,
			reversalDate, time.Time{}, valueobject.NewMoneyAmount(balances.UnpaidAmount))
		if err != nil {
			return err
		}
		reversal.Description = fmt.Sprintf("Reversal of %s: %s", original.DocumentNumber, req.Reason)
		reversal.CreatedBy = &req.ActorID
		reversal.LinkReversal(original.ID)

		// MarkReversed validates the original's state, so it runs before
		// anything is persisted
		oldStatus := original.Status
		if err := original.MarkReversed(reversal.ID, req.Reason); err != nil {
			return err
		}

		if err := repos.DocumentRepo().Save(ctx, reversal); err != nil {
			return fmt.Errorf("failed to save reversal document: %w", err)
		}
		if err := repos.DocumentRepo().SaveWithLock(ctx, original); err != nil {
			return fmt.Errorf("failed to save original document: %w", err)
		}

		createEntry, err := audit.NewEntry(req.CompanyID, "document", reversal.ID,
			audit.ActionCreate, nil, reversal, req.ActorID)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, createEntry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}
		statusEntry, err := audit.NewEntry(req.CompanyID, "document", original.ID,
			audit.ActionStatusChange,
			statusSnapshot(oldStatus),
			statusSnapshot(original.Status), req.ActorID)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, statusEntry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		result = &ReversalResult{Original: original, Reversal: reversal}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	publishEvents(ctx, s.events, result.Reversal, result.Original)

	telemetry.SetAttributes(span, "reversal_number", result.Reversal.DocumentNumber)
	return result, nil
}
