package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptAllocationLine is one allocation row on a payment receipt
type ReceiptAllocationLine struct {
	DocumentNumber string
	DocumentDate   time.Time
	Amount         decimal.Decimal
}

// ReceiptData is everything a payment receipt template needs
type ReceiptData struct {
	CompanyName       string
	LogoURL           string
	FooterNote        string
	PaymentNumber     string
	PaymentDate       time.Time
	PaymentType       string
	Direction         string
	PartyName         string
	PartyCode         string
	Amount            decimal.Decimal
	AllocatedAmount   decimal.Decimal
	UnallocatedAmount decimal.Decimal
	Reference         string
	Description       string
	Allocations       []ReceiptAllocationLine
	GeneratedAt       time.Time
}

// DocumentPrintLine is one line item on a printed document
type DocumentPrintLine struct {
	LineNumber  int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// DocumentPrintData is everything a document template needs
type DocumentPrintData struct {
	CompanyName    string
	LogoURL        string
	FooterNote     string
	DocumentNumber string
	DocumentType   string
	Direction      string
	Status         string
	PartyName      string
	PartyCode      string
	PartyAddress   string
	PartyTaxID     string
	DocumentDate   time.Time
	DueDate        time.Time
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal
	UnpaidAmount   decimal.Decimal
	Description    string
	Lines          []DocumentPrintLine
	GeneratedAt    time.Time
}

// LedgerPrinter renders receipt and document data to PDF bytes. Implemented
// by the infrastructure printing package.
type LedgerPrinter interface {
	RenderPaymentReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
	RenderDocument(ctx context.Context, data DocumentPrintData) ([]byte, error)
}

// CompanyProfile carries the static company details stamped on printouts
type CompanyProfile struct {
	Name       string
	LogoURL    string
	FooterNote string
}

// ReceiptService assembles print data for payments and documents and hands
// it to the PDF printer.
type ReceiptService struct {
	scope   TransactionScope
	printer LedgerPrinter
	profile CompanyProfile
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(scope TransactionScope, printer LedgerPrinter, profile CompanyProfile) *ReceiptService {
	return &ReceiptService{scope: scope, printer: printer, profile: profile}
}

// RenderPaymentReceipt renders the receipt PDF for a confirmed payment
func (s *ReceiptService) RenderPaymentReceipt(ctx context.Context, companyID, paymentID uuid.UUID) ([]byte, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "payment")
	defer span.End()

	var data ReceiptData
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, allocations, err := loadPaymentWithAllocations(ctx, repos, companyID, paymentID)
		if err != nil {
			return err
		}
		if payment.Status != ledger.PaymentStatusConfirmed {
			return shared.NewDomainError(shared.CodeInvalidStatus,
				"Receipts can only be printed for confirmed payments")
		}

		balances := ledger.DerivePaymentBalances(payment, allocations)
		data = ReceiptData{
			CompanyName:       s.profile.Name,
			LogoURL:           s.profile.LogoURL,
			FooterNote:        s.profile.FooterNote,
			PaymentNumber:     payment.PaymentNumber,
			PaymentDate:       payment.PaymentDate,
			PaymentType:       string(payment.Type),
			Direction:         string(payment.Direction),
			Amount:            payment.Amount,
			AllocatedAmount:   balances.AllocatedAmount,
			UnallocatedAmount: balances.UnallocatedAmount,
			Reference:         payment.Reference,
			Description:       payment.Description,
			GeneratedAt:       time.Now(),
		}

		if payment.PartyID != nil {
			p, err := repos.PartyRepo().FindByIDForCompany(ctx, companyID, *payment.PartyID)
			if err != nil {
				return fmt.Errorf("failed to load party: %w", err)
			}
			if p != nil {
				data.PartyName = p.Name
				data.PartyCode = p.Code
			}
		}

		for _, a := range allocations {
			if a.Status != ledger.AllocationStatusActive {
				continue
			}
			doc, err := repos.DocumentRepo().FindByID(ctx, a.DocumentID)
			if err != nil {
				return fmt.Errorf("failed to load allocated document: %w", err)
			}
			line := ReceiptAllocationLine{Amount: a.Amount}
			if doc != nil {
				line.DocumentNumber = doc.DocumentNumber
				line.DocumentDate = doc.DocumentDate
			}
			data.Allocations = append(data.Allocations, line)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	pdf, err := s.printer.RenderPaymentReceipt(ctx, data)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return pdf, nil
}

// RenderDocument renders the printable PDF of a document
func (s *ReceiptService) RenderDocument(ctx context.Context, companyID, documentID uuid.UUID) ([]byte, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "document")
	defer span.End()

	var data DocumentPrintData
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.DocumentRepo().FindByIDForCompany(ctx, companyID, documentID)
		if err != nil {
			return fmt.Errorf("failed to load document: %w", err)
		}
		if doc == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Document not found")
		}

		allocations, err := repos.AllocationRepo().FindActiveByDocument(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("failed to load allocations: %w", err)
		}
		balances := ledger.DeriveDocumentBalances(doc, allocations)

		data = DocumentPrintData{
			CompanyName:    s.profile.Name,
			LogoURL:        s.profile.LogoURL,
			FooterNote:     s.profile.FooterNote,
			DocumentNumber: doc.DocumentNumber,
			DocumentType:   string(doc.Type),
			Direction:      string(doc.Direction),
			Status:         string(doc.Status),
			DocumentDate:   doc.DocumentDate,
			DueDate:        doc.DueDate,
			TotalAmount:    doc.TotalAmount,
			PaidAmount:     balances.PaidAmount,
			UnpaidAmount:   balances.UnpaidAmount,
			Description:    doc.Description,
			GeneratedAt:    time.Now(),
		}

		p, err := repos.PartyRepo().FindByIDForCompany(ctx, companyID, doc.PartyID)
		if err != nil {
			return fmt.Errorf("failed to load party: %w", err)
		}
		if p != nil {
			data.PartyName = p.Name
			data.PartyCode = p.Code
			data.PartyAddress = p.Address
			data.PartyTaxID = p.TaxID
		}

		for _, line := range doc.Lines {
			data.Lines = append(data.Lines, DocumentPrintLine{
				LineNumber:  line.LineNumber,
				Description: line.Description,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				Total:       line.Total,
			})
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	pdf, err := s.printer.RenderDocument(ctx, data)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return pdf, nil
}
