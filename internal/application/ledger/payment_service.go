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

// PaymentService records cash, bank and transfer movements
type PaymentService struct {
	scope  TransactionScope
	events shared.EventPublisher
}

// NewPaymentService creates a new PaymentService. The publisher may be nil.
func NewPaymentService(scope TransactionScope, events shared.EventPublisher) *PaymentService {
	return &PaymentService{scope: scope, events: events}
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	CompanyID   uuid.UUID
	BranchID    *uuid.UUID
	Type        ledger.PaymentType
	Direction   ledger.PaymentDirection
	PartyID     *uuid.UUID
	Sources     ledger.PaymentSources
	PaymentDate time.Time
	Amount      decimal.Decimal
	Description string
	Reference   string
	ActorID     uuid.UUID
}

// PaymentResult is a payment together with its derived allocation balances
type PaymentResult struct {
	Payment           *ledger.Payment `json:"payment"`
	AllocatedAmount   decimal.Decimal `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal `json:"unallocated_amount"`
}

// RecordPayment records a confirmed payment in its date's accounting period.
// The period must be open and the type/direction/source combination must be
// one of the allowed ones. Outflows additionally require the funding cashbox
// or bank account to cover the amount at recording time, derived from
// confirmed payments; there is no stored balance column to drift.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()

	telemetry.SetAttributes(span,
		"company_id", req.CompanyID.String(),
		"payment_type", string(req.Type),
		"amount", req.Amount.String(),
	)

	if req.ActorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Actor ID is required")
	}

	var result *PaymentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := ensureOpenPeriod(ctx, repos, req.CompanyID, req.PaymentDate); err != nil {
			return err
		}

		if req.PartyID != nil {
			p, err := repos.PartyRepo().FindByIDForCompany(ctx, req.CompanyID, *req.PartyID)
			if err != nil {
				return fmt.Errorf("failed to load party: %w", err)
			}
			if p == nil {
				return shared.NewDomainError(shared.CodeNotFound,
					fmt.Sprintf("Party %s not found", *req.PartyID))
			}
		}

		if err := s.checkSourcesExist(ctx, repos, req.CompanyID, req.Sources); err != nil {
			return err
		}
		if req.Direction == ledger.PaymentDirectionOut {
			if err := s.checkOutflowCovered(ctx, repos, req.CompanyID, req.Sources, req.Amount); err != nil {
				return err
			}
		}

		seq, err := repos.Sequences().Next(ctx, ledger.SequenceScope{
			CompanyID: req.CompanyID,
			BranchID:  req.BranchID,
			Kind:      string(req.Type),
			Year:      req.PaymentDate.Year(),
			Month:     req.PaymentDate.Month(),
		})
		if err != nil {
			return fmt.Errorf("failed to generate payment number: %w", err)
		}
		number := ledger.FormatPaymentNumber(req.Type, req.PaymentDate.Year(), req.PaymentDate.Month(), seq)

		payment, err := ledger.NewPayment(req.CompanyID, req.BranchID, number, req.Type,
			req.Direction, req.PartyID, req.Sources, req.PaymentDate,
			valueobject.NewMoneyAmount(req.Amount))
		if err != nil {
			return err
		}
		payment.Description = req.Description
		payment.Reference = req.Reference
		payment.CreatedBy = &req.ActorID

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		entry, err := audit.NewEntry(req.CompanyID, "payment", payment.ID, audit.ActionCreate, nil, payment, req.ActorID)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		result = &PaymentResult{
			Payment:           payment,
			AllocatedAmount:   decimal.Zero,
			UnallocatedAmount: payment.Amount,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	publishEvents(ctx, s.events, result.Payment)

	telemetry.SetAttributes(span, "payment_number", result.Payment.PaymentNumber)
	return result, nil
}

// GetPayment returns a payment with balances derived from its active allocations
func (s *PaymentService) GetPayment(ctx context.Context, companyID, paymentID uuid.UUID) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "get")
	defer span.End()

	var result *PaymentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, allocations, err := loadPaymentWithAllocations(ctx, repos, companyID, paymentID)
		if err != nil {
			return err
		}
		balances := ledger.DerivePaymentBalances(payment, allocations)
		result = &PaymentResult{
			Payment:           payment,
			AllocatedAmount:   balances.AllocatedAmount,
			UnallocatedAmount: balances.UnallocatedAmount,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// ListPayments returns a page of payments matching the filter
func (s *PaymentService) ListPayments(ctx context.Context, companyID uuid.UUID, filter ledger.PaymentFilter) (*shared.Paginated[ledger.Payment], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "list")
	defer span.End()

	var page *shared.Paginated[ledger.Payment]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payments, err := repos.PaymentRepo().FindAllForCompany(ctx, companyID, filter)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		total, err := repos.PaymentRepo().CountForCompany(ctx, companyID, filter)
		if err != nil {
			return fmt.Errorf("failed to count payments: %w", err)
		}
		p := shared.NewPaginated(payments, total, filter.Page, filter.PageSize)
		page = &p
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return page, nil
}

// checkSourcesExist verifies every referenced cashbox and bank account exists
// for the company and is active
func (s *PaymentService) checkSourcesExist(ctx context.Context, repos TransactionalRepositories, companyID uuid.UUID, sources ledger.PaymentSources) error {
	for _, id := range []*uuid.UUID{sources.CashboxID, sources.FromCashboxID, sources.ToCashboxID} {
		if id == nil {
			continue
		}
		box, err := repos.CashboxRepo().FindByIDForCompany(ctx, companyID, *id)
		if err != nil {
			return fmt.Errorf("failed to load cashbox: %w", err)
		}
		if box == nil {
			return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Cashbox %s not found", *id))
		}
		if !box.IsActive {
			return shared.NewDomainError(shared.CodeInvalidStatus, fmt.Sprintf("Cashbox %s is inactive", box.Code))
		}
	}
	for _, id := range []*uuid.UUID{sources.BankAccountID, sources.FromBankAccountID, sources.ToBankAccountID} {
		if id == nil {
			continue
		}
		account, err := repos.BankAccountRepo().FindByIDForCompany(ctx, companyID, *id)
		if err != nil {
			return fmt.Errorf("failed to load bank account: %w", err)
		}
		if account == nil {
			return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Bank account %s not found", *id))
		}
		if !account.IsActive {
			return shared.NewDomainError(shared.CodeInvalidStatus, fmt.Sprintf("Bank account %s is inactive", account.Code))
		}
	}
	return nil
}

// checkOutflowCovered verifies the funding source of an outflow holds at
// least the amount, using balances derived from confirmed payments
func (s *PaymentService) checkOutflowCovered(ctx context.Context, repos TransactionalRepositories, companyID uuid.UUID, sources ledger.PaymentSources, amount decimal.Decimal) error {
	cashboxes, bankAccounts := sources.OutflowSources()
	for _, id := range cashboxes {
		balance, err := repos.PaymentRepo().CashboxBalance(ctx, companyID, id)
		if err != nil {
			return fmt.Errorf("failed to derive cashbox balance: %w", err)
		}
		if balance.LessThan(amount) {
			return shared.NewDomainError(shared.CodeInsufficientBalance,
				fmt.Sprintf("Cashbox balance %s does not cover %s", balance, amount))
		}
	}
	for _, id := range bankAccounts {
		balance, err := repos.PaymentRepo().BankAccountBalance(ctx, companyID, id)
		if err != nil {
			return fmt.Errorf("failed to derive bank account balance: %w", err)
		}
		if balance.LessThan(amount) {
			return shared.NewDomainError(shared.CodeInsufficientBalance,
				fmt.Sprintf("Bank account balance %s does not cover %s", balance, amount))
		}
	}
	return nil
}

func loadPaymentWithAllocations(ctx context.Context, repos TransactionalRepositories, companyID, paymentID uuid.UUID) (*ledger.Payment, []ledger.PaymentAllocation, error) {
	payment, err := repos.PaymentRepo().FindByIDForCompany(ctx, companyID, paymentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, nil, shared.NewDomainError(shared.CodeNotFound,
			fmt.Sprintf("Payment %s not found", paymentID))
	}
	allocations, err := repos.AllocationRepo().FindActiveByPayment(ctx, paymentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load allocations: %w", err)
	}
	return payment, allocations, nil
}
