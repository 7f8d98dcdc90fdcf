package ledger

import (
	"strings"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxAttachmentFileSize is the maximum allowed file size (25MB)
const MaxAttachmentFileSize = 25 * 1024 * 1024

// AttachmentOwnerType identifies which ledger record an attachment belongs to
type AttachmentOwnerType string

const (
	AttachmentOwnerDocument AttachmentOwnerType = "document"
	AttachmentOwnerPayment  AttachmentOwnerType = "payment"
)

// IsValid checks if the owner type is valid
func (t AttachmentOwnerType) IsValid() bool {
	switch t {
	case AttachmentOwnerDocument, AttachmentOwnerPayment:
		return true
	default:
		return false
	}
}

// AttachmentStatus represents the lifecycle status of an attachment
type AttachmentStatus string

const (
	AttachmentStatusPending AttachmentStatus = "pending"
	AttachmentStatusActive  AttachmentStatus = "active"
	AttachmentStatusDeleted AttachmentStatus = "deleted"
)

// IsValid checks if the attachment status is valid
func (s AttachmentStatus) IsValid() bool {
	switch s {
	case AttachmentStatusPending, AttachmentStatusActive, AttachmentStatusDeleted:
		return true
	default:
		return false
	}
}

// Attachment is a supporting file linked to a document or payment,
// for example a scanned invoice or a bank transfer slip. The file itself
// lives in object storage; the aggregate tracks its key and lifecycle.
type Attachment struct {
	shared.CompanyAggregateRoot
	OwnerType   AttachmentOwnerType
	OwnerID     uuid.UUID
	Status      AttachmentStatus
	FileName    string
	FileSize    int64
	ContentType string
	StorageKey  string
	UploadedBy  *uuid.UUID
}

// NewAttachment creates a new attachment in pending status. The record is
// pending until the client confirms the upload completed.
func NewAttachment(
	companyID uuid.UUID,
	ownerType AttachmentOwnerType,
	ownerID uuid.UUID,
	fileName string,
	fileSize int64,
	contentType string,
	storageKey string,
	uploadedBy *uuid.UUID,
) (*Attachment, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Company ID cannot be empty")
	}
	if !ownerType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid attachment owner type")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Owner ID cannot be empty")
	}
	if err := validateAttachmentFileName(fileName); err != nil {
		return nil, err
	}
	if err := validateAttachmentFileSize(fileSize); err != nil {
		return nil, err
	}
	if err := validateAttachmentContentType(contentType); err != nil {
		return nil, err
	}
	if err := validateAttachmentStorageKey(storageKey); err != nil {
		return nil, err
	}

	attachment := &Attachment{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		OwnerType:            ownerType,
		OwnerID:              ownerID,
		Status:               AttachmentStatusPending,
		FileName:             fileName,
		FileSize:             fileSize,
		ContentType:          contentType,
		StorageKey:           storageKey,
		UploadedBy:           uploadedBy,
	}

	attachment.AddDomainEvent(NewAttachmentCreatedEvent(attachment))

	return attachment, nil
}

// Confirm activates the attachment after the file reached object storage
func (a *Attachment) Confirm() error {
	if a.Status == AttachmentStatusActive {
		return shared.NewDomainError(shared.CodeInvalidStatus, "Attachment is already confirmed")
	}
	if a.Status == AttachmentStatusDeleted {
		return shared.NewDomainError(shared.CodeInvalidStatus, "Cannot confirm a deleted attachment")
	}

	a.Status = AttachmentStatusActive
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAttachmentConfirmedEvent(a))

	return nil
}

// Delete marks the attachment as deleted (soft delete)
func (a *Attachment) Delete() error {
	if a.Status == AttachmentStatusDeleted {
		return shared.NewDomainError(shared.CodeInvalidStatus, "Attachment is already deleted")
	}

	oldStatus := a.Status
	a.Status = AttachmentStatusDeleted
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAttachmentDeletedEvent(a, oldStatus))

	return nil
}

// IsPending returns true if the attachment awaits upload confirmation
func (a *Attachment) IsPending() bool {
	return a.Status == AttachmentStatusPending
}

// IsActive returns true if the attachment is active
func (a *Attachment) IsActive() bool {
	return a.Status == AttachmentStatusActive
}

// IsDeleted returns true if the attachment is deleted
func (a *Attachment) IsDeleted() bool {
	return a.Status == AttachmentStatusDeleted
}

func validateAttachmentFileName(name string) error {
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "File name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError(shared.CodeInvalidInput, "File name cannot exceed 255 characters")
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return shared.NewDomainError(shared.CodeInvalidInput, "File name contains invalid characters")
		}
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return shared.NewDomainError(shared.CodeInvalidInput, "File name cannot contain path separators")
	}
	return nil
}

func validateAttachmentFileSize(size int64) error {
	if size <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "File size must be greater than 0")
	}
	if size > MaxAttachmentFileSize {
		return shared.NewDomainError(shared.CodeInvalidInput, "File size cannot exceed 25MB")
	}
	return nil
}

func validateAttachmentContentType(contentType string) error {
	if contentType == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Content type cannot be empty")
	}
	if len(contentType) > 100 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Content type cannot exceed 100 characters")
	}
	if !strings.Contains(contentType, "/") ||
		strings.HasPrefix(contentType, "/") || strings.HasSuffix(contentType, "/") {
		return shared.NewDomainError(shared.CodeInvalidInput, "Content type must be in type/subtype format")
	}
	return nil
}

func validateAttachmentStorageKey(key string) error {
	if key == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Storage key cannot be empty")
	}
	if len(key) > 500 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Storage key cannot exceed 500 characters")
	}
	// Keys are relative paths within the bucket
	if strings.Contains(key, "..") {
		return shared.NewDomainError(shared.CodeInvalidInput, "Storage key cannot contain path traversal sequences")
	}
	if strings.HasPrefix(key, "/") {
		return shared.NewDomainError(shared.CodeInvalidInput, "Storage key must be a relative path")
	}
	return nil
}
