package ledger

import (
	"context"
	"fmt"

	"github.com/finbooks/backend/internal/domain/audit"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// FundsSourceService manages the cashboxes and bank accounts payments draw
// on. Sources are deactivated, never deleted, because confirmed payments
// keep referencing them.
type FundsSourceService struct {
	cashboxRepo     ledger.CashboxRepository
	bankAccountRepo ledger.BankAccountRepository
	auditRepo       audit.Repository
}

// NewFundsSourceService creates a new FundsSourceService
func NewFundsSourceService(
	cashboxRepo ledger.CashboxRepository,
	bankAccountRepo ledger.BankAccountRepository,
	auditRepo audit.Repository,
) *FundsSourceService {
	return &FundsSourceService{
		cashboxRepo:     cashboxRepo,
		bankAccountRepo: bankAccountRepo,
		auditRepo:       auditRepo,
	}
}

// CreateCashboxRequest represents a request to create a cashbox
type CreateCashboxRequest struct {
	CompanyID uuid.UUID
	BranchID  *uuid.UUID
	Code      string
	Name      string
	ActorID   uuid.UUID
}

// CreateCashbox creates an active cashbox
func (s *FundsSourceService) CreateCashbox(ctx context.Context, req CreateCashboxRequest) (*ledger.Cashbox, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "funds_source", "create_cashbox")
	defer span.End()

	if req.ActorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Actor ID is required")
	}

	box, err := ledger.NewCashbox(req.CompanyID, req.BranchID, req.Code, req.Name)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	box.CreatedBy = &req.ActorID

	if err := s.cashboxRepo.Save(ctx, box); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save cashbox: %w", err)
	}

	if err := s.writeAudit(ctx, req.CompanyID, "cashbox", box.ID, audit.ActionCreate, nil, box, req.ActorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return box, nil
}

// GetCashbox loads one cashbox
func (s *FundsSourceService) GetCashbox(ctx context.Context, companyID, cashboxID uuid.UUID) (*ledger.Cashbox, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "funds_source", "get_cashbox")
	defer span.End()

	box, err := s.cashboxRepo.FindByIDForCompany(ctx, companyID, cashboxID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load cashbox: %w", err)
	}
	if box == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Cashbox not found")
	}
	return box, nil
}

// ListCashboxes lists the company's cashboxes
func (s *FundsSourceService) ListCashboxes(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ledger.Cashbox, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "funds_source", "list_cashboxes")
	defer span.End()

	boxes, err := s.cashboxRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list cashboxes: %w", err)
	}
	return boxes, nil
}

// DeactivateCashbox marks a cashbox as unusable for new payments
func (s *FundsSourceService) DeactivateCashbox(ctx context.Context, companyID, cashboxID, actorID uuid.UUID) (*ledger.Cashbox, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "funds_source", "deactivate_cashbox")
	defer span.End()

	box, err := s.GetCashbox(ctx, companyID, cashboxID)
	if err != nil {
		return nil, err
	}
	if !box.IsActive {
		return nil, shared.NewDomainError(shared.CodeInvalidStatus, "Cashbox is already inactive")
	}

	before := *box
	box.Deactivate()
	if err := s.cashboxRepo.Save(ctx, box); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save cashbox: %w", err)
	}

	if err := s.writeAudit(ctx, companyID, "cashbox", box.ID, audit.ActionStatusChange, &before, box, actorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return box, nil
}

// CreateBankAccountRequest represents a request to create a bank account
type CreateBankAccountRequest struct {
	CompanyID     uuid.UUID
	BranchID      *uuid.UUID
	Code          string
	Name          string
	BankName      string
	AccountNumber string
	IBAN          string
	ActorID       uuid.UUID
}

// CreateBankAccount creates an active bank account
func (s *FundsSourceService) CreateBankAccount(ctx context.Context, req CreateBankAccountRequest) (*ledger.BankAccount, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "funds_source", "create_bank_account")
	defer span.End()

	if req.ActorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Actor ID is required")
	}

	account, err := ledger.NewBankAccount(req.CompanyID, req.BranchID, req.Code, req.Name, req.BankName, req.AccountNumber)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	account.IBAN = req.IBAN
	account.CreatedBy = &req.ActorID

	if err := s.bankAccountRepo.Save(ctx, account); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save bank account: %w", err)
	}

	if err := s.writeAudit(ctx, req.CompanyID, "bank_account", account.ID, audit.ActionCreate, nil, account, req.ActorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return account, nil
}

// GetBankAccount loads one bank account
func (s *FundsSourceService) GetBankAccount(ctx context.Context, companyID, accountID uuid.UUID) (*ledger.BankAccount, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "funds_source", "get_bank_account")
	defer span.End()

	account, err := s.bankAccountRepo.FindByIDForCompany(ctx, companyID, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load bank account: %w", err)
	}
	if account == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Bank account not found")
	}
	return account, nil
}

// ListBankAccounts lists the company's bank accounts
func (s *FundsSourceService) ListBankAccounts(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ledger.BankAccount, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "funds_source", "list_bank_accounts")
	defer span.End()

	accounts, err := s.bankAccountRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	return accounts, nil
}

// DeactivateBankAccount marks a bank account as unusable for new payments
func (s *FundsSourceService) DeactivateBankAccount(ctx context.Context, companyID, accountID, actorID uuid.UUID) (*ledger.BankAccount, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "funds_source", "deactivate_bank_account")
	defer span.End()

	account, err := s.GetBankAccount(ctx, companyID, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, shared.NewDomainError(shared.CodeInvalidStatus, "Bank account is already inactive")
	}

	before := *account
	account.Deactivate()
	if err := s.bankAccountRepo.Save(ctx, account); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save bank account: %w", err)
	}

	if err := s.writeAudit(ctx, companyID, "bank_account", account.ID, audit.ActionStatusChange, &before, account, actorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return account, nil
}

func (s *FundsSourceService) writeAudit(ctx context.Context, companyID uuid.UUID, entityType string, entityID uuid.UUID, action audit.Action, before, after any, actorID uuid.UUID) error {
	entry, err := audit.NewEntry(companyID, entityType, entityID, action, before, after, actorID)
	if err != nil {
		return err
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}
