package ledger

import (
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentCreatedEvent is raised when a new document is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID         `json:"document_id"`
	DocumentNumber string            `json:"document_number"`
	DocumentType   DocumentType      `json:"document_type"`
	Direction      DocumentDirection `json:"direction"`
	PartyID        uuid.UUID         `json:"party_id"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	DocumentDate   time.Time         `json:"document_date"`
}

// EventType returns the event type name
func (e *DocumentCreatedEvent) EventType() string {
	return "DocumentCreated"
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(d *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DocumentCreated", "Document", d.ID, d.CompanyID),
		DocumentID:      d.ID,
		DocumentNumber:  d.DocumentNumber,
		DocumentType:    d.Type,
		Direction:       d.Direction,
		PartyID:         d.PartyID,
		TotalAmount:     d.TotalAmount,
		DocumentDate:    d.DocumentDate,
	}
}

// DocumentSettledEvent is raised when a document becomes fully paid
type DocumentSettledEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID       `json:"document_id"`
	DocumentNumber string          `json:"document_number"`
	DocumentType   DocumentType    `json:"document_type"`
	PartyID        uuid.UUID       `json:"party_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *DocumentSettledEvent) EventType() string {
	return "DocumentSettled"
}

// NewDocumentSettledEvent creates a new DocumentSettledEvent
func NewDocumentSettledEvent(d *Document) *DocumentSettledEvent {
	return &DocumentSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DocumentSettled", "Document", d.ID, d.CompanyID),
		DocumentID:      d.ID,
		DocumentNumber:  d.DocumentNumber,
		DocumentType:    d.Type,
		PartyID:         d.PartyID,
		TotalAmount:     d.TotalAmount,
	}
}

// DocumentReversedEvent is raised when a document is neutralized by a reversal
type DocumentReversedEvent struct {
	shared.BaseDomainEvent
	DocumentID         uuid.UUID      `json:"document_id"`
	DocumentNumber     string         `json:"document_number"`
	DocumentType       DocumentType   `json:"document_type"`
	PreviousStatus     DocumentStatus `json:"previous_status"`
	ReversalDocumentID uuid.UUID      `json:"reversal_document_id"`
	Reason             string         `json:"reason,omitempty"`
}

// EventType returns the event type name
func (e *DocumentReversedEvent) EventType() string {
	return "DocumentReversed"
}

// NewDocumentReversedEvent creates a new DocumentReversedEvent
func NewDocumentReversedEvent(d *Document, previous DocumentStatus, reversalID uuid.UUID) *DocumentReversedEvent {
	return &DocumentReversedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent("DocumentReversed", "Document", d.ID, d.CompanyID),
		DocumentID:         d.ID,
		DocumentNumber:     d.DocumentNumber,
		DocumentType:       d.Type,
		PreviousStatus:     previous,
		ReversalDocumentID: reversalID,
		Reason:             d.ReversalReason,
	}
}

// DocumentCancelledEvent is raised when a document is cancelled
type DocumentCancelledEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
	Reason         string    `json:"reason"`
}

// EventType returns the event type name
func (e *DocumentCancelledEvent) EventType() string {
	return "DocumentCancelled"
}

// NewDocumentCancelledEvent creates a new DocumentCancelledEvent
func NewDocumentCancelledEvent(d *Document) *DocumentCancelledEvent {
	return &DocumentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DocumentCancelled", "Document", d.ID, d.CompanyID),
		DocumentID:      d.ID,
		DocumentNumber:  d.DocumentNumber,
		Reason:          d.CancelReason,
	}
}

// PaymentRecordedEvent is raised when a payment is recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID        `json:"payment_id"`
	PaymentNumber string           `json:"payment_number"`
	PaymentType   PaymentType      `json:"payment_type"`
	Direction     PaymentDirection `json:"direction"`
	PartyID       *uuid.UUID       `json:"party_id,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	PaymentDate   time.Time        `json:"payment_date"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return "PaymentRecorded"
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRecorded", "Payment", p.ID, p.CompanyID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		PaymentType:     p.Type,
		Direction:       p.Direction,
		PartyID:         p.PartyID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
	}
}

// AllocationCreatedEvent is raised when a payment is allocated to a document
type AllocationCreatedEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID       `json:"allocation_id"`
	PaymentID    uuid.UUID       `json:"payment_id"`
	DocumentID   uuid.UUID       `json:"document_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *AllocationCreatedEvent) EventType() string {
	return "AllocationCreated"
}

// NewAllocationCreatedEvent creates a new AllocationCreatedEvent
func NewAllocationCreatedEvent(companyID uuid.UUID, a *PaymentAllocation) *AllocationCreatedEvent {
	return &AllocationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AllocationCreated", "PaymentAllocation", a.ID, companyID),
		AllocationID:    a.ID,
		PaymentID:       a.PaymentID,
		DocumentID:      a.DocumentID,
		Amount:          a.Amount,
	}
}

// AllocationCancelledEvent is raised when an allocation is soft-cancelled
type AllocationCancelledEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID       `json:"allocation_id"`
	PaymentID    uuid.UUID       `json:"payment_id"`
	DocumentID   uuid.UUID       `json:"document_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *AllocationCancelledEvent) EventType() string {
	return "AllocationCancelled"
}

// NewAllocationCancelledEvent creates a new AllocationCancelledEvent
func NewAllocationCancelledEvent(companyID uuid.UUID, a *PaymentAllocation) *AllocationCancelledEvent {
	return &AllocationCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AllocationCancelled", "PaymentAllocation", a.ID, companyID),
		AllocationID:    a.ID,
		PaymentID:       a.PaymentID,
		DocumentID:      a.DocumentID,
		Amount:          a.Amount,
	}
}

// PeriodLockedEvent is raised when an accounting period is locked
type PeriodLockedEvent struct {
	shared.BaseDomainEvent
	PeriodID uuid.UUID  `json:"period_id"`
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	LockedBy uuid.UUID  `json:"locked_by"`
	Notes    string     `json:"notes,omitempty"`
}

// EventType returns the event type name
func (e *PeriodLockedEvent) EventType() string {
	return "PeriodLocked"
}

// NewPeriodLockedEvent creates a new PeriodLockedEvent
func NewPeriodLockedEvent(p *AccountingPeriod) *PeriodLockedEvent {
	var lockedBy uuid.UUID
	if p.LockedBy != nil {
		lockedBy = *p.LockedBy
	}
	return &PeriodLockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PeriodLocked", "AccountingPeriod", p.ID, p.CompanyID),
		PeriodID:        p.ID,
		Year:            p.Year,
		Month:           p.Month,
		LockedBy:        lockedBy,
		Notes:           p.LockNotes,
	}
}

// PeriodUnlockedEvent is raised when an accounting period is reopened
type PeriodUnlockedEvent struct {
	shared.BaseDomainEvent
	PeriodID   uuid.UUID  `json:"period_id"`
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	UnlockedBy uuid.UUID  `json:"unlocked_by"`
	Reason     string     `json:"reason"`
}

// EventType returns the event type name
func (e *PeriodUnlockedEvent) EventType() string {
	return "PeriodUnlocked"
}

// NewPeriodUnlockedEvent creates a new PeriodUnlockedEvent
func NewPeriodUnlockedEvent(p *AccountingPeriod, actorID uuid.UUID, reason string) *PeriodUnlockedEvent {
	return &PeriodUnlockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PeriodUnlocked", "AccountingPeriod", p.ID, p.CompanyID),
		PeriodID:        p.ID,
		Year:            p.Year,
		Month:           p.Month,
		UnlockedBy:      actorID,
		Reason:          reason,
	}
}

// AttachmentCreatedEvent is raised when an attachment record is created
type AttachmentCreatedEvent struct {
	shared.BaseDomainEvent
	AttachmentID uuid.UUID           `json:"attachment_id"`
	OwnerType    AttachmentOwnerType `json:"owner_type"`
	OwnerID      uuid.UUID           `json:"owner_id"`
	FileName     string              `json:"file_name"`
	ContentType  string              `json:"content_type"`
	FileSize     int64               `json:"file_size"`
}

// EventType returns the event type name
func (e *AttachmentCreatedEvent) EventType() string {
	return "AttachmentCreated"
}

// NewAttachmentCreatedEvent creates a new AttachmentCreatedEvent
func NewAttachmentCreatedEvent(a *Attachment) *AttachmentCreatedEvent {
	return &AttachmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AttachmentCreated", "Attachment", a.ID, a.CompanyID),
		AttachmentID:    a.ID,
		OwnerType:       a.OwnerType,
		OwnerID:         a.OwnerID,
		FileName:        a.FileName,
		ContentType:     a.ContentType,
		FileSize:        a.FileSize,
	}
}

// AttachmentConfirmedEvent is raised when an upload is confirmed
type AttachmentConfirmedEvent struct {
	shared.BaseDomainEvent
	AttachmentID uuid.UUID           `json:"attachment_id"`
	OwnerType    AttachmentOwnerType `json:"owner_type"`
	OwnerID      uuid.UUID           `json:"owner_id"`
	StorageKey   string              `json:"storage_key"`
}

// EventType returns the event type name
func (e *AttachmentConfirmedEvent) EventType() string {
	return "AttachmentConfirmed"
}

// NewAttachmentConfirmedEvent creates a new AttachmentConfirmedEvent
func NewAttachmentConfirmedEvent(a *Attachment) *AttachmentConfirmedEvent {
	return &AttachmentConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AttachmentConfirmed", "Attachment", a.ID, a.CompanyID),
		AttachmentID:    a.ID,
		OwnerType:       a.OwnerType,
		OwnerID:         a.OwnerID,
		StorageKey:      a.StorageKey,
	}
}

// AttachmentDeletedEvent is raised when an attachment is soft deleted
type AttachmentDeletedEvent struct {
	shared.BaseDomainEvent
	AttachmentID   uuid.UUID           `json:"attachment_id"`
	OwnerType      AttachmentOwnerType `json:"owner_type"`
	OwnerID        uuid.UUID           `json:"owner_id"`
	PreviousStatus AttachmentStatus    `json:"previous_status"`
}

// EventType returns the event type name
func (e *AttachmentDeletedEvent) EventType() string {
	return "AttachmentDeleted"
}

// NewAttachmentDeletedEvent creates a new AttachmentDeletedEvent
func NewAttachmentDeletedEvent(a *Attachment, previous AttachmentStatus) *AttachmentDeletedEvent {
	return &AttachmentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AttachmentDeleted", "Attachment", a.ID, a.CompanyID),
		AttachmentID:    a.ID,
		OwnerType:       a.OwnerType,
		OwnerID:         a.OwnerID,
		PreviousStatus:  previous,
	}
}
