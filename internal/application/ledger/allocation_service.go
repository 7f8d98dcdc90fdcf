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

// AllocationService links payments to the documents they settle. Allocations
// are the only thing that moves a document toward SETTLED; every balance in
// the system is a sum over the active rows this service writes.
type AllocationService struct {
	scope  TransactionScope
	events shared.EventPublisher
}

// NewAllocationService creates a new AllocationService. The publisher may be nil.
func NewAllocationService(scope TransactionScope, events shared.EventPublisher) *AllocationService {
	return &AllocationService{scope: scope, events: events}
}

// AllocationItem is one document target within an allocation batch. Date and
// notes left empty fall back to the batch-level values.
type AllocationItem struct {
	DocumentID     uuid.UUID       `json:"document_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	AllocationDate time.Time       `json:"allocation_date"`
	Notes          string          `json:"notes"`
}

// AllocateRequest represents a request to allocate a payment across documents
type AllocateRequest struct {
	CompanyID      uuid.UUID
	PaymentID      uuid.UUID
	Items          []AllocationItem
	AllocationDate time.Time // Zero means now
	Notes          string
	ActorID        uuid.UUID
}

// AllocateResult reports the created allocations and the documents they touched
type AllocateResult struct {
	Allocations []ledger.PaymentAllocation `json:"allocations"`
	Documents   []DocumentResult           `json:"documents"`
	Payment     PaymentResult              `json:"payment"`
}

// Allocate applies a payment to one or more documents atomically. The whole
// batch lands or none of it does. Items are processed in caller order, so
// when two items target the same document the second sees the first's effect.
//
// Checks, in order: the payment exists, is CONFIRMED and its period is open;
// the batch total does not exceed the payment's unallocated amount; each
// document exists, sits in an open period, is PENDING or PARTIAL, points the
// same way as the payment, and has enough unpaid amount left for its item.
func (s *AllocationService) Allocate(ctx context.Context, req AllocateRequest) (*AllocateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "allocate")
	defer span.End()

	telemetry.SetAttributes(span,
		"company_id", req.CompanyID.String(),
		"payment_id", req.PaymentID.String(),
		"items_count", len(req.Items),
	)

	if req.ActorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Actor ID is required")
	}
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Allocation batch cannot be empty")
	}
	allocationDate := req.AllocationDate
	if allocationDate.IsZero() {
		allocationDate = time.Now()
	}

	var result *AllocateResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, paymentAllocations, err := loadPaymentWithAllocations(ctx, repos, req.CompanyID, req.PaymentID)
		if err != nil {
			return err
		}
		if !payment.Status.CanAllocate() {
			return shared.NewDomainError(shared.CodeInvalidStatus,
				fmt.Sprintf("Payment %s is %s and cannot be allocated", payment.PaymentNumber, payment.Status))
		}
		if _, err := ensureOpenPeriod(ctx, repos, req.CompanyID, payment.PaymentDate); err != nil {
			return err
		}

		paymentBalances := ledger.DerivePaymentBalances(payment, paymentAllocations)
		totalRequested := decimal.Zero
		for _, item := range req.Items {
			if item.Amount.LessThanOrEqual(decimal.Zero) {
				return shared.NewDomainError(shared.CodeInvalidInput, "Allocation amounts must be positive")
			}
			totalRequested = totalRequested.Add(item.Amount)
		}
		if totalRequested.GreaterThan(paymentBalances.UnallocatedAmount) {
			return shared.NewDomainError(shared.CodeOverAllocation,
				fmt.Sprintf("Requested %s exceeds unallocated %s on payment %s",
					totalRequested, paymentBalances.UnallocatedAmount, payment.PaymentNumber))
		}

		created := make([]ledger.PaymentAllocation, 0, len(req.Items))
		touched := make(map[uuid.UUID]*ledger.Document)
		// Running paid amount per document, so repeated items see prior effects
		paidByDoc := make(map[uuid.UUID]decimal.Decimal)

		for _, item := range req.Items {
			doc := touched[item.DocumentID]
			if doc == nil {
				var allocations []ledger.PaymentAllocation
				doc, allocations, err = loadDocumentWithAllocations(ctx, repos, req.CompanyID, item.DocumentID)
				if err != nil {
					return err
				}
				if _, err := ensureOpenPeriod(ctx, repos, req.CompanyID, doc.DocumentDate); err != nil {
					return err
				}
				touched[item.DocumentID] = doc
				paidByDoc[item.DocumentID] = ledger.DeriveDocumentBalances(doc, allocations).PaidAmount
			}

			if !doc.Status.CanAcceptAllocation() {
				return shared.NewDomainError(shared.CodeInvalidStatus,
					fmt.Sprintf("Document %s is %s and cannot accept allocations", doc.DocumentNumber, doc.Status))
			}
			if !payment.Direction.Matches(doc.Direction) {
				return shared.NewDomainError(shared.CodeDirectionMismatch,
					fmt.Sprintf("Payment direction %s cannot settle a %s document", payment.Direction, doc.Direction))
			}

			unpaid := doc.TotalAmount.Sub(paidByDoc[item.DocumentID])
			if item.Amount.GreaterThan(unpaid) {
				return shared.NewDomainError(shared.CodeOverAllocation,
					fmt.Sprintf("Allocation %s exceeds unpaid %s on document %s",
						item.Amount, unpaid, doc.DocumentNumber))
			}

			itemDate := item.AllocationDate
			if itemDate.IsZero() {
				itemDate = allocationDate
			}
			itemNotes := item.Notes
			if itemNotes == "" {
				itemNotes = req.Notes
			}
			allocation, err := ledger.NewPaymentAllocation(payment.ID, doc.ID,
				valueobject.NewMoneyAmount(item.Amount), itemDate, itemNotes, req.ActorID)
			if err != nil {
				return err
			}
			if err := repos.AllocationRepo().Save(ctx, allocation); err != nil {
				return fmt.Errorf("failed to save allocation: %w", err)
			}

			paidByDoc[item.DocumentID] = paidByDoc[item.DocumentID].Add(item.Amount)
			doc.RefreshStatus(paidByDoc[item.DocumentID])
			created = append(created, *allocation)

			entry, err := audit.NewEntry(req.CompanyID, "payment_allocation", allocation.ID,
				audit.ActionCreate, nil, allocation, req.ActorID)
			if err != nil {
				return err
			}
			if err := repos.AuditRepo().Append(ctx, entry); err != nil {
				return fmt.Errorf("failed to write audit entry: %w", err)
			}
		}

		documents := make([]DocumentResult, 0, len(touched))
		for id, doc := range touched {
			if err := repos.DocumentRepo().SaveWithLock(ctx, doc); err != nil {
				return fmt.Errorf("failed to save document: %w", err)
			}
			documents = append(documents, DocumentResult{
				Document:     doc,
				PaidAmount:   paidByDoc[id],
				UnpaidAmount: doc.TotalAmount.Sub(paidByDoc[id]),
			})
		}

		result = &AllocateResult{
			Allocations: created,
			Documents:   documents,
			Payment: PaymentResult{
				Payment:           payment,
				AllocatedAmount:   paymentBalances.AllocatedAmount.Add(totalRequested),
				UnallocatedAmount: paymentBalances.UnallocatedAmount.Sub(totalRequested),
			},
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for i := range result.Allocations {
		publish(ctx, s.events, ledger.NewAllocationCreatedEvent(req.CompanyID, &result.Allocations[i]))
	}
	for _, dr := range result.Documents {
		publishEvents(ctx, s.events, dr.Document)
	}
	return result, nil
}

// CancelAllocation soft-cancels one allocation and recomputes the document's
// status from the remaining active rows. The cancelled row stays for audit.
// Both the payment's and the document's periods must be open.
func (s *AllocationService) CancelAllocation(ctx context.Context, companyID, allocationID, actorID uuid.UUID) (*DocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "cancel")
	defer span.End()

	telemetry.SetAttributes(span, "allocation_id", allocationID.String())

	if actorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Actor ID is required")
	}

	var result *DocumentResult
	var cancelled *ledger.PaymentAllocation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		allocation, err := repos.AllocationRepo().FindByID(ctx, allocationID)
		if err != nil {
			return fmt.Errorf("failed to load allocation: %w", err)
		}
		if allocation == nil {
			return shared.NewDomainError(shared.CodeNotFound,
				fmt.Sprintf("Allocation %s not found", allocationID))
		}

		payment, _, err := loadPaymentWithAllocations(ctx, repos, companyID, allocation.PaymentID)
		if err != nil {
			return err
		}
		doc, _, err := loadDocumentWithAllocations(ctx, repos, companyID, allocation.DocumentID)
		if err != nil {
			return err
		}
		if _, err := ensureOpenPeriod(ctx, repos, companyID, payment.PaymentDate); err != nil {
			return err
		}
		if _, err := ensureOpenPeriod(ctx, repos, companyID, doc.DocumentDate); err != nil {
			return err
		}

		oldStatus := doc.Status
		if err := allocation.Cancel(actorID); err != nil {
			return err
		}
		if err := repos.AllocationRepo().Save(ctx, allocation); err != nil {
			return fmt.Errorf("failed to save allocation: %w", err)
		}

		remaining, err := repos.AllocationRepo().FindActiveByDocument(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("failed to load allocations: %w", err)
		}
		// A settled document drops back to PARTIAL or PENDING when an
		// allocation is withdrawn
		balances := ledger.DeriveDocumentBalances(doc, remaining)
		doc.RefreshStatus(balances.PaidAmount)
		if err := repos.DocumentRepo().SaveWithLock(ctx, doc); err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}

		entry, err := audit.NewEntry(companyID, "payment_allocation", allocation.ID,
			audit.ActionStatusChange,
			map[string]string{"status": string(ledger.AllocationStatusActive), "document_status": string(oldStatus)},
			map[string]string{"status": string(allocation.Status), "document_status": string(doc.Status)},
			actorID)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		result = &DocumentResult{
			Document:     doc,
			PaidAmount:   balances.PaidAmount,
			UnpaidAmount: balances.UnpaidAmount,
		}
		cancelled = allocation
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publish(ctx, s.events, ledger.NewAllocationCancelledEvent(companyID, cancelled))
	publishEvents(ctx, s.events, result.Document)
	return result, nil
}
