package ledger

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/logger"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllowedContentTypes is the whitelist of content types accepted for
// supporting files. Executables and scripts are rejected; SVG is excluded
// because it can carry embedded scripts.
var AllowedContentTypes = map[string]bool{
	// Images
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/tiff": true,
	// Documents
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	// Text
	"text/plain": true,
	"text/csv":   true,
	// Archives, for bundled supporting paperwork
	"application/zip": true,
}

// ObjectStorageService defines the interface for object storage operations,
// implemented by the infrastructure layer (S3 or compatible)
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file.
	// Returns the upload URL and expiration time
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file.
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// AttachmentServiceConfig holds configuration for the attachment service
type AttachmentServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
	// MaxAttachmentsPerOwner caps attachments per document or payment
	MaxAttachmentsPerOwner int
}

// DefaultAttachmentServiceConfig returns the default configuration
func DefaultAttachmentServiceConfig() AttachmentServiceConfig {
	return AttachmentServiceConfig{
		UploadURLExpiry:        15 * time.Minute,
		DownloadURLExpiry:      1 * time.Hour,
		MaxAttachmentsPerOwner: 20,
	}
}

// AttachmentService manages supporting files on documents and payments.
// Files go to object storage through presigned URLs; the service only
// tracks metadata and the upload lifecycle.
type AttachmentService struct {
	attachmentRepo ledger.AttachmentRepository
	documentRepo   ledger.DocumentRepository
	paymentRepo    ledger.PaymentRepository
	storageService ObjectStorageService
	config         AttachmentServiceConfig
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	attachmentRepo ledger.AttachmentRepository,
	documentRepo ledger.DocumentRepository,
	paymentRepo ledger.PaymentRepository,
	storageService ObjectStorageService,
) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		documentRepo:   documentRepo,
		paymentRepo:    paymentRepo,
		storageService: storageService,
		config:         DefaultAttachmentServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *AttachmentService) SetConfig(config AttachmentServiceConfig) {
	s.config = config
}

// InitiateUploadRequest describes the file the client wants to upload
type InitiateUploadRequest struct {
	OwnerType   ledger.AttachmentOwnerType
	OwnerID     uuid.UUID
	FileName    string
	FileSize    int64
	ContentType string
}

// InitiateUploadResponse carries the presigned upload URL for the client
type InitiateUploadResponse struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	UploadURL    string    `json:"upload_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AttachmentResult is attachment metadata plus a short-lived download URL
type AttachmentResult struct {
	Attachment  *ledger.Attachment `json:"attachment"`
	DownloadURL string             `json:"download_url,omitempty"`
}

// InitiateUpload creates a pending attachment record and returns a presigned
// upload URL. The attachment stays pending until ConfirmUpload verifies the
// object landed in storage.
func (s *AttachmentService) InitiateUpload(
	ctx context.Context,
	companyID uuid.UUID,
	req InitiateUploadRequest,
	uploadedBy *uuid.UUID,
) (*InitiateUploadResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "attachment", "initiate_upload")
	defer span.End()

	telemetry.SetAttributes(span,
		"company_id", companyID.String(),
		"owner_type", string(req.OwnerType),
	)

	if err := s.ensureOwnerExists(ctx, companyID, req.OwnerType, req.OwnerID); err != nil {
		return nil, err
	}

	count, err := s.attachmentRepo.CountActiveByOwner(ctx, companyID, req.OwnerType, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attachments: %w", err)
	}
	if count >= int64(s.config.MaxAttachmentsPerOwner) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Maximum %d attachments per record allowed", s.config.MaxAttachmentsPerOwner))
	}

	if !isAllowedContentType(req.ContentType) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Content type '%s' is not allowed", req.ContentType))
	}

	storageKey := s.generateStorageKey(companyID, req.OwnerType, req.OwnerID, req.FileName)

	attachment, err := ledger.NewAttachment(
		companyID,
		req.OwnerType,
		req.OwnerID,
		req.FileName,
		req.FileSize,
		req.ContentType,
		storageKey,
		uploadedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := s.attachmentRepo.Save(ctx, attachment); err != nil {
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(
		ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		// Drop the pending record so a retry starts clean
		_ = s.attachmentRepo.DeleteForCompany(ctx, companyID, attachment.ID)
		telemetry.RecordError(span, err)
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		AttachmentID: attachment.ID,
		UploadURL:    uploadURL,
		ExpiresAt:    expiresAt,
	}, nil
}

// ConfirmUpload verifies the object exists in storage and activates the
// attachment
func (s *AttachmentService) ConfirmUpload(
	ctx context.Context,
	companyID uuid.UUID,
	attachmentID uuid.UUID,
) (*AttachmentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "attachment", "confirm_upload")
	defer span.End()

	attachment, err := s.findAttachment(ctx, companyID, attachmentID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storageService.ObjectExists(ctx, attachment.StorageKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to verify upload: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError(shared.CodeNotFound,
			"File not found in storage. Upload the file before confirming.")
	}

	if err := attachment.Confirm(); err != nil {
		return nil, err
	}

	if err := s.attachmentRepo.Save(ctx, attachment); err != nil {
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	return s.toResult(ctx, attachment), nil
}

// GetByID retrieves an attachment with a fresh download URL
func (s *AttachmentService) GetByID(
	ctx context.Context,
	companyID uuid.UUID,
	attachmentID uuid.UUID,
) (*AttachmentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "attachment", "get")
	defer span.End()

	attachment, err := s.findAttachment(ctx, companyID, attachmentID)
	if err != nil {
		return nil, err
	}

	return s.toResult(ctx, attachment), nil
}

// ListByOwner lists non-deleted attachments of a document or payment
func (s *AttachmentService) ListByOwner(
	ctx context.Context,
	companyID uuid.UUID,
	ownerType ledger.AttachmentOwnerType,
	ownerID uuid.UUID,
) ([]AttachmentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "attachment", "list")
	defer span.End()

	if !ownerType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid attachment owner type")
	}
	if err := s.ensureOwnerExists(ctx, companyID, ownerType, ownerID); err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.FindByOwner(ctx, companyID, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	results := make([]AttachmentResult, len(attachments))
	for i := range attachments {
		results[i] = *s.toResult(ctx, &attachments[i])
	}
	return results, nil
}

// Delete soft deletes an attachment; the storage object stays until a
// permanent delete
func (s *AttachmentService) Delete(
	ctx context.Context,
	companyID uuid.UUID,
	attachmentID uuid.UUID,
) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "attachment", "delete")
	defer span.End()

	attachment, err := s.findAttachment(ctx, companyID, attachmentID)
	if err != nil {
		return err
	}

	if err := attachment.Delete(); err != nil {
		return err
	}

	return s.attachmentRepo.Save(ctx, attachment)
}

// PermanentDelete removes the attachment row and its storage object
func (s *AttachmentService) PermanentDelete(
	ctx context.Context,
	companyID uuid.UUID,
	attachmentID uuid.UUID,
) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "attachment", "permanent_delete")
	defer span.End()

	attachment, err := s.findAttachment(ctx, companyID, attachmentID)
	if err != nil {
		return err
	}

	// The storage object may already be gone; log and continue
	if err := s.storageService.DeleteObject(ctx, attachment.StorageKey); err != nil {
		logger.FromContext(ctx).Warn("failed to delete attachment from storage",
			zap.String("attachment_id", attachment.ID.String()),
			zap.String("storage_key", attachment.StorageKey),
			zap.Error(err))
	}

	return s.attachmentRepo.DeleteForCompany(ctx, companyID, attachmentID)
}

func (s *AttachmentService) findAttachment(
	ctx context.Context,
	companyID, attachmentID uuid.UUID,
) (*ledger.Attachment, error) {
	attachment, err := s.attachmentRepo.FindByIDForCompany(ctx, companyID, attachmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attachment: %w", err)
	}
	if attachment == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Attachment not found")
	}
	return attachment, nil
}

func (s *AttachmentService) ensureOwnerExists(
	ctx context.Context,
	companyID uuid.UUID,
	ownerType ledger.AttachmentOwnerType,
	ownerID uuid.UUID,
) error {
	switch ownerType {
	case ledger.AttachmentOwnerDocument:
		doc, err := s.documentRepo.FindByIDForCompany(ctx, companyID, ownerID)
		if err != nil {
			return fmt.Errorf("failed to load document: %w", err)
		}
		if doc == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Document not found")
		}
	case ledger.AttachmentOwnerPayment:
		payment, err := s.paymentRepo.FindByIDForCompany(ctx, companyID, ownerID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Payment not found")
		}
	default:
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid attachment owner type")
	}
	return nil
}

// generateStorageKey builds a unique, company-scoped key for a file
func (s *AttachmentService) generateStorageKey(
	companyID uuid.UUID,
	ownerType ledger.AttachmentOwnerType,
	ownerID uuid.UUID,
	fileName string,
) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("companies/%s/%ss/%s/attachments/%s%s",
		companyID.String(),
		string(ownerType),
		ownerID.String(),
		uuid.New().String(),
		ext,
	)
}

// toResult converts an attachment and attaches a download URL for active ones
func (s *AttachmentService) toResult(ctx context.Context, attachment *ledger.Attachment) *AttachmentResult {
	result := &AttachmentResult{Attachment: attachment}
	if !attachment.IsActive() {
		return result
	}

	url, _, err := s.storageService.GenerateDownloadURL(
		ctx, attachment.StorageKey, s.config.DownloadURLExpiry)
	if err == nil {
		result.DownloadURL = url
	}
	return result
}

func isAllowedContentType(contentType string) bool {
	// Strip parameters such as "; charset=utf-8"
	base := contentType
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		base = contentType[:idx]
	}
	return AllowedContentTypes[strings.ToLower(strings.TrimSpace(base))]
}
