package models

import (
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for the Document aggregate root.
type DocumentModel struct {
	CompanyAggregateModel
	DocumentNumber       string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_document_company_number,priority:2"`
	Type                 ledger.DocumentType      `gorm:"type:varchar(30);not null;index"`
	Direction            ledger.DocumentDirection `gorm:"type:varchar(12);not null;index"`
	Status               ledger.DocumentStatus    `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PartyID              uuid.UUID                `gorm:"type:uuid;not null;index"`
	DocumentDate         time.Time                `gorm:"not null;index"`
	DueDate              time.Time                `gorm:"not null;index"`
	PeriodYear           int                      `gorm:"not null;index:idx_document_period"`
	PeriodMonth          int                      `gorm:"not null;index:idx_document_period"`
	TotalAmount          decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Description          string                   `gorm:"type:text"`
	Lines                []DocumentLineModel      `gorm:"foreignKey:DocumentID"`
	ReversesDocumentID   *uuid.UUID               `gorm:"type:uuid;index"`
	ReversedByDocumentID *uuid.UUID               `gorm:"type:uuid"`
	ReversedAt           *time.Time
	ReversalReason       string `gorm:"type:varchar(500)"`
	CancelledAt          *time.Time
	CancelReason         string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document entity.
func (m *DocumentModel) ToDomain() *ledger.Document {
	doc := &ledger.Document{
		DocumentNumber:       m.DocumentNumber,
		Type:                 m.Type,
		Direction:            m.Direction,
		Status:               m.Status,
		PartyID:              m.PartyID,
		DocumentDate:         m.DocumentDate,
		DueDate:              m.DueDate,
		PeriodYear:           m.PeriodYear,
		PeriodMonth:          time.Month(m.PeriodMonth),
		TotalAmount:          m.TotalAmount,
		Description:          m.Description,
		ReversesDocumentID:   m.ReversesDocumentID,
		ReversedByDocumentID: m.ReversedByDocumentID,
		ReversedAt:           m.ReversedAt,
		ReversalReason:       m.ReversalReason,
		CancelledAt:          m.CancelledAt,
		CancelReason:         m.CancelReason,
	}
	m.PopulateCompanyAggregateRoot(&doc.CompanyAggregateRoot)
	if len(m.Lines) > 0 {
		doc.Lines = make([]ledger.DocumentLine, len(m.Lines))
		for i, line := range m.Lines {
			doc.Lines[i] = *line.ToDomain()
		}
	}
	return doc
}

// FromDomain populates the persistence model from a domain Document entity.
func (m *DocumentModel) FromDomain(doc *ledger.Document) {
	m.FromDomainCompanyAggregateRoot(doc.CompanyAggregateRoot)
	m.DocumentNumber = doc.DocumentNumber
	m.Type = doc.Type
	m.Direction = doc.Direction
	m.Status = doc.Status
	m.PartyID = doc.PartyID
	m.DocumentDate = doc.DocumentDate
	m.DueDate = doc.DueDate
	m.PeriodYear = doc.PeriodYear
	m.PeriodMonth = int(doc.PeriodMonth)
	m.TotalAmount = doc.TotalAmount
	m.Description = doc.Description
	m.ReversesDocumentID = doc.ReversesDocumentID
	m.ReversedByDocumentID = doc.ReversedByDocumentID
	m.ReversedAt = doc.ReversedAt
	m.ReversalReason = doc.ReversalReason
	m.CancelledAt = doc.CancelledAt
	m.CancelReason = doc.CancelReason
	m.Lines = make([]DocumentLineModel, len(doc.Lines))
	for i, line := range doc.Lines {
		m.Lines[i].FromDomain(&line)
	}
}

// DocumentLineModel is the persistence model for a document line item.
type DocumentLineModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber      int             `gorm:"not null"`
	Description     string          `gorm:"type:varchar(500)"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "document_lines"
}

// ToDomain converts the persistence model to a domain DocumentLine.
func (m *DocumentLineModel) ToDomain() *ledger.DocumentLine {
	return &ledger.DocumentLine{
		ID:              m.ID,
		DocumentID:      m.DocumentID,
		LineNumber:      m.LineNumber,
		Description:     m.Description,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		DiscountPercent: m.DiscountPercent,
		DiscountAmount:  m.DiscountAmount,
		TaxRate:         m.TaxRate,
		TaxAmount:       m.TaxAmount,
		Subtotal:        m.Subtotal,
		Total:           m.Total,
	}
}

// FromDomain populates the persistence model from a domain DocumentLine.
func (m *DocumentLineModel) FromDomain(line *ledger.DocumentLine) {
	m.ID = line.ID
	m.DocumentID = line.DocumentID
	m.LineNumber = line.LineNumber
	m.Description = line.Description
	m.Quantity = line.Quantity
	m.UnitPrice = line.UnitPrice
	m.DiscountPercent = line.DiscountPercent
	m.DiscountAmount = line.DiscountAmount
	m.TaxRate = line.TaxRate
	m.TaxAmount = line.TaxAmount
	m.Subtotal = line.Subtotal
	m.Total = line.Total
}

// PaymentModel is the persistence model for the Payment aggregate root.
// The six source references are flattened into nullable columns; which of
// them are set is governed by the payment type.
type PaymentModel struct {
	CompanyAggregateModel
	PaymentNumber     string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_company_number,priority:2"`
	Type              ledger.PaymentType      `gorm:"type:varchar(20);not null;index"`
	Direction         ledger.PaymentDirection `gorm:"type:varchar(5);not null;index"`
	Status            ledger.PaymentStatus    `gorm:"type:varchar(20);not null;default:'CONFIRMED';index"`
	PartyID           *uuid.UUID              `gorm:"type:uuid;index"`
	CashboxID         *uuid.UUID              `gorm:"type:uuid;index"`
	BankAccountID     *uuid.UUID              `gorm:"type:uuid;index"`
	FromCashboxID     *uuid.UUID              `gorm:"type:uuid;index"`
	ToCashboxID       *uuid.UUID              `gorm:"type:uuid;index"`
	FromBankAccountID *uuid.UUID              `gorm:"type:uuid;index"`
	ToBankAccountID   *uuid.UUID              `gorm:"type:uuid;index"`
	PaymentDate       time.Time               `gorm:"not null;index"`
	PeriodYear        int                     `gorm:"not null;index:idx_payment_period"`
	PeriodMonth       int                     `gorm:"not null;index:idx_payment_period"`
	Amount            decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Description       string                  `gorm:"type:text"`
	Reference         string                  `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *ledger.Payment {
	payment := &ledger.Payment{
		PaymentNumber: m.PaymentNumber,
		Type:          m.Type,
		Direction:     m.Direction,
		Status:        m.Status,
		PartyID:       m.PartyID,
		Sources: ledger.PaymentSources{
			CashboxID:         m.CashboxID,
			BankAccountID:     m.BankAccountID,
			FromCashboxID:     m.FromCashboxID,
			ToCashboxID:       m.ToCashboxID,
			FromBankAccountID: m.FromBankAccountID,
			ToBankAccountID:   m.ToBankAccountID,
		},
		PaymentDate: m.PaymentDate,
		PeriodYear:  m.PeriodYear,
		PeriodMonth: time.Month(m.PeriodMonth),
		Amount:      m.Amount,
		Description: m.Description,
		Reference:   m.Reference,
	}
	m.PopulateCompanyAggregateRoot(&payment.CompanyAggregateRoot)
	return payment
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(payment *ledger.Payment) {
	m.FromDomainCompanyAggregateRoot(payment.CompanyAggregateRoot)
	m.PaymentNumber = payment.PaymentNumber
	m.Type = payment.Type
	m.Direction = payment.Direction
	m.Status = payment.Status
	m.PartyID = payment.PartyID
	m.CashboxID = payment.Sources.CashboxID
	m.BankAccountID = payment.Sources.BankAccountID
	m.FromCashboxID = payment.Sources.FromCashboxID
	m.ToCashboxID = payment.Sources.ToCashboxID
	m.FromBankAccountID = payment.Sources.FromBankAccountID
	m.ToBankAccountID = payment.Sources.ToBankAccountID
	m.PaymentDate = payment.PaymentDate
	m.PeriodYear = payment.PeriodYear
	m.PeriodMonth = int(payment.PeriodMonth)
	m.Amount = payment.Amount
	m.Description = payment.Description
	m.Reference = payment.Reference
}

// PaymentAllocationModel is the persistence model for a payment allocation.
// Rows are inserted ACTIVE and only ever flipped to CANCELLED.
type PaymentAllocationModel struct {
	BaseModel
	PaymentID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	DocumentID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	AllocationDate time.Time               `gorm:"not null"`
	Status         ledger.AllocationStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Notes          string                  `gorm:"type:varchar(500)"`
	CreatedBy      uuid.UUID               `gorm:"type:uuid;not null"`
	CancelledAt    *time.Time
	CancelledBy    *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain PaymentAllocation.
func (m *PaymentAllocationModel) ToDomain() *ledger.PaymentAllocation {
	return &ledger.PaymentAllocation{
		BaseEntity:     m.BaseModel.ToDomain(),
		PaymentID:      m.PaymentID,
		DocumentID:     m.DocumentID,
		Amount:         m.Amount,
		AllocationDate: m.AllocationDate,
		Status:         m.Status,
		Notes:          m.Notes,
		CreatedBy:      m.CreatedBy,
		CancelledAt:    m.CancelledAt,
		CancelledBy:    m.CancelledBy,
	}
}

// FromDomain populates the persistence model from a domain PaymentAllocation.
func (m *PaymentAllocationModel) FromDomain(allocation *ledger.PaymentAllocation) {
	m.FromDomainBaseEntity(allocation.BaseEntity)
	m.PaymentID = allocation.PaymentID
	m.DocumentID = allocation.DocumentID
	m.Amount = allocation.Amount
	m.AllocationDate = allocation.AllocationDate
	m.Status = allocation.Status
	m.Notes = allocation.Notes
	m.CreatedBy = allocation.CreatedBy
	m.CancelledAt = allocation.CancelledAt
	m.CancelledBy = allocation.CancelledBy
}

// AccountingPeriodModel is the persistence model for an accounting period.
// The (company_id, year, month) unique index is what makes lazy period
// creation idempotent under concurrency.
type AccountingPeriodModel struct {
	CompanyAggregateModel
	Year      int                 `gorm:"not null;uniqueIndex:idx_period_company_month,priority:2"`
	Month     int                 `gorm:"not null;uniqueIndex:idx_period_company_month,priority:3"`
	Status    ledger.PeriodStatus `gorm:"type:varchar(10);not null;default:'OPEN';index"`
	LockedBy  *uuid.UUID          `gorm:"type:uuid"`
	LockedAt  *time.Time
	LockNotes string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (AccountingPeriodModel) TableName() string {
	return "accounting_periods"
}

// ToDomain converts the persistence model to a domain AccountingPeriod.
func (m *AccountingPeriodModel) ToDomain() *ledger.AccountingPeriod {
	period := &ledger.AccountingPeriod{
		Year:      m.Year,
		Month:     time.Month(m.Month),
		Status:    m.Status,
		LockedBy:  m.LockedBy,
		LockedAt:  m.LockedAt,
		LockNotes: m.LockNotes,
	}
	m.PopulateCompanyAggregateRoot(&period.CompanyAggregateRoot)
	return period
}

// FromDomain populates the persistence model from a domain AccountingPeriod.
func (m *AccountingPeriodModel) FromDomain(period *ledger.AccountingPeriod) {
	m.FromDomainCompanyAggregateRoot(period.CompanyAggregateRoot)
	m.Year = period.Year
	m.Month = int(period.Month)
	m.Status = period.Status
	m.LockedBy = period.LockedBy
	m.LockedAt = period.LockedAt
	m.LockNotes = period.LockNotes
}

// CashboxModel is the persistence model for a cashbox.
type CashboxModel struct {
	CompanyAggregateModel
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex:idx_cashbox_company_code,priority:2"`
	Name     string `gorm:"type:varchar(200);not null"`
	IsActive bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CashboxModel) TableName() string {
	return "cashboxes"
}

// ToDomain converts the persistence model to a domain Cashbox.
func (m *CashboxModel) ToDomain() *ledger.Cashbox {
	cashbox := &ledger.Cashbox{
		Code:     m.Code,
		Name:     m.Name,
		IsActive: m.IsActive,
	}
	m.PopulateCompanyAggregateRoot(&cashbox.CompanyAggregateRoot)
	return cashbox
}

// FromDomain populates the persistence model from a domain Cashbox.
func (m *CashboxModel) FromDomain(cashbox *ledger.Cashbox) {
	m.FromDomainCompanyAggregateRoot(cashbox.CompanyAggregateRoot)
	m.Code = cashbox.Code
	m.Name = cashbox.Name
	m.IsActive = cashbox.IsActive
}

// BankAccountModel is the persistence model for a bank account.
type BankAccountModel struct {
	CompanyAggregateModel
	Code          string `gorm:"type:varchar(50);not null;uniqueIndex:idx_bank_account_company_code,priority:2"`
	Name          string `gorm:"type:varchar(200);not null"`
	BankName      string `gorm:"type:varchar(200)"`
	AccountNumber string `gorm:"type:varchar(50);not null"`
	IBAN          string `gorm:"type:varchar(50)"`
	IsActive      bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain BankAccount.
func (m *BankAccountModel) ToDomain() *ledger.BankAccount {
	account := &ledger.BankAccount{
		Code:          m.Code,
		Name:          m.Name,
		BankName:      m.BankName,
		AccountNumber: m.AccountNumber,
		IBAN:          m.IBAN,
		IsActive:      m.IsActive,
	}
	m.PopulateCompanyAggregateRoot(&account.CompanyAggregateRoot)
	return account
}

// FromDomain populates the persistence model from a domain BankAccount.
func (m *BankAccountModel) FromDomain(account *ledger.BankAccount) {
	m.FromDomainCompanyAggregateRoot(account.CompanyAggregateRoot)
	m.Code = account.Code
	m.Name = account.Name
	m.BankName = account.BankName
	m.AccountNumber = account.AccountNumber
	m.IBAN = account.IBAN
	m.IsActive = account.IsActive
}

// NumberSequenceModel is the counter row behind sequence generation. One row
// per scope key, incremented under FOR UPDATE.
type NumberSequenceModel struct {
	ScopeKey  string    `gorm:"type:varchar(150);primary_key"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind      string    `gorm:"type:varchar(30);not null"`
	Value     int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "number_sequences"
}

// AttachmentModel is the persistence model for a supporting file linked to a
// document or payment.
type AttachmentModel struct {
	CompanyAggregateModel
	OwnerType   string     `gorm:"type:varchar(20);not null;index:idx_attachment_owner,priority:1"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_attachment_owner,priority:2"`
	Status      string     `gorm:"type:varchar(20);not null;index"`
	FileName    string     `gorm:"type:varchar(255);not null"`
	FileSize    int64      `gorm:"not null"`
	ContentType string     `gorm:"type:varchar(100);not null"`
	StorageKey  string     `gorm:"type:varchar(500);not null;uniqueIndex"`
	UploadedBy  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (AttachmentModel) TableName() string {
	return "attachments"
}

// ToDomain converts the persistence model to a domain Attachment.
func (m *AttachmentModel) ToDomain() *ledger.Attachment {
	attachment := &ledger.Attachment{
		OwnerType:   ledger.AttachmentOwnerType(m.OwnerType),
		OwnerID:     m.OwnerID,
		Status:      ledger.AttachmentStatus(m.Status),
		FileName:    m.FileName,
		FileSize:    m.FileSize,
		ContentType: m.ContentType,
		StorageKey:  m.StorageKey,
		UploadedBy:  m.UploadedBy,
	}
	m.PopulateCompanyAggregateRoot(&attachment.CompanyAggregateRoot)
	return attachment
}

// FromDomain populates the persistence model from a domain Attachment.
func (m *AttachmentModel) FromDomain(attachment *ledger.Attachment) {
	m.FromDomainCompanyAggregateRoot(attachment.CompanyAggregateRoot)
	m.OwnerType = string(attachment.OwnerType)
	m.OwnerID = attachment.OwnerID
	m.Status = string(attachment.Status)
	m.FileName = attachment.FileName
	m.FileSize = attachment.FileSize
	m.ContentType = attachment.ContentType
	m.StorageKey = attachment.StorageKey
	m.UploadedBy = attachment.UploadedBy
}
