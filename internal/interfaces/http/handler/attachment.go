package handler

import (
	appledger "github.com/finbooks/backend/internal/application/ledger"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttachmentHandler exposes attachment upload and lookup endpoints. Files
// move directly between the client and object storage via presigned URLs;
// the API only brokers metadata.
type AttachmentHandler struct {
	BaseHandler
	attachments *appledger.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachments *appledger.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// InitiateUploadRequest is the initiate-upload request body
type InitiateUploadRequest struct {
	OwnerType   string `json:"owner_type" binding:"required,oneof=document payment"`
	OwnerID     string `json:"owner_id" binding:"required,uuid"`
	FileName    string `json:"file_name" binding:"required,max=255"`
	FileSize    int64  `json:"file_size" binding:"required,min=1"`
	ContentType string `json:"content_type" binding:"required"`
}

// AttachmentListRequest holds the list query parameters
type AttachmentListRequest struct {
	OwnerType string `form:"owner_type" binding:"required,oneof=document payment"`
	OwnerID   string `form:"owner_id" binding:"required,uuid"`
}

// InitiateUpload handles POST /attachments/initiate
func (h *AttachmentHandler) InitiateUpload(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		h.BadRequest(c, "Invalid owner_id")
		return
	}

	result, err := h.attachments.InitiateUpload(c.Request.Context(), companyID, appledger.InitiateUploadRequest{
		OwnerType:   ledger.AttachmentOwnerType(req.OwnerType),
		OwnerID:     ownerID,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		ContentType: req.ContentType,
	}, &actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ConfirmUpload handles POST /attachments/:id/confirm
func (h *AttachmentHandler) ConfirmUpload(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	attachmentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.attachments.ConfirmUpload(c.Request.Context(), companyID, attachmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get handles GET /attachments/:id
func (h *AttachmentHandler) Get(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	attachmentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.attachments.GetByID(c.Request.Context(), companyID, attachmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List handles GET /attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	var req AttachmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		h.BadRequest(c, "Invalid owner_id")
		return
	}

	results, err := h.attachments.ListByOwner(c.Request.Context(), companyID,
		ledger.AttachmentOwnerType(req.OwnerType), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// Delete handles DELETE /attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	attachmentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.attachments.Delete(c.Request.Context(), companyID, attachmentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
