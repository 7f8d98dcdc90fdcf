package handler

import (
	"time"

	appledger "github.com/finbooks/backend/internal/application/ledger"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentHandler exposes document endpoints: create, read, list,
// outstanding per party, cancel, and reverse.
type DocumentHandler struct {
	BaseHandler
	obligations *appledger.ObligationService
	reversals   *appledger.ReversalService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(obligations *appledger.ObligationService, reversals *appledger.ReversalService) *DocumentHandler {
	return &DocumentHandler{obligations: obligations, reversals: reversals}
}

// DocumentLineRequest is one line item in a create request
type DocumentLineRequest struct {
	Description     string           `json:"description" binding:"required"`
	Quantity        decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount,omitempty"`
	TaxRate         *decimal.Decimal `json:"tax_rate,omitempty"`
	TaxAmount       *decimal.Decimal `json:"tax_amount,omitempty"`
}

// CreateDocumentRequest is the create-document request body
type CreateDocumentRequest struct {
	Type         string                `json:"type" binding:"required,oneof=CUSTOMER_INVOICE SUPPLIER_INVOICE SALARY OVERTIME ADVANCE"`
	Direction    string                `json:"direction" binding:"required,oneof=RECEIVABLE PAYABLE"`
	PartyID      string                `json:"party_id" binding:"required,uuid"`
	BranchID     *string               `json:"branch_id,omitempty" binding:"omitempty,uuid"`
	DocumentDate time.Time             `json:"document_date" binding:"required"`
	DueDate      time.Time             `json:"due_date,omitempty"`
	TotalAmount  decimal.Decimal       `json:"total_amount"`
	Description  string                `json:"description"`
	Lines        []DocumentLineRequest `json:"lines,omitempty" binding:"omitempty,dive"`
}

// CancelDocumentRequest is the cancel-document request body
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReverseDocumentRequest is the reverse-document request body
type ReverseDocumentRequest struct {
	Reason       string    `json:"reason" binding:"required"`
	ReversalDate time.Time `json:"reversal_date,omitempty"`
}

// DocumentListRequest holds the list query parameters
type DocumentListRequest struct {
	dto.ListRequest
	PartyID   string `form:"party_id" binding:"omitempty,uuid"`
	Type      string `form:"type" binding:"omitempty,oneof=CUSTOMER_INVOICE SUPPLIER_INVOICE SALARY OVERTIME ADVANCE REVERSAL"`
	Direction string `form:"direction" binding:"omitempty,oneof=RECEIVABLE PAYABLE"`
	Status    string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL SETTLED CANCELLED REVERSED"`
	FromDate  string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate    string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// Create handles POST /documents
func (h *DocumentHandler) Create(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	partyID, err := uuid.Parse(req.PartyID)
	if err != nil {
		h.BadRequest(c, "Invalid party_id")
		return
	}

	appReq := appledger.CreateDocumentRequest{
		CompanyID:    companyID,
		Type:         ledger.DocumentType(req.Type),
		Direction:    ledger.DocumentDirection(req.Direction),
		PartyID:      partyID,
		DocumentDate: req.DocumentDate,
		DueDate:      req.DueDate,
		TotalAmount:  req.TotalAmount,
		Description:  req.Description,
		ActorID:      actorID,
	}
	if req.BranchID != nil {
		branchID, err := uuid.Parse(*req.BranchID)
		if err != nil {
			h.BadRequest(c, "Invalid branch_id")
			return
		}
		appReq.BranchID = &branchID
	}
	for _, line := range req.Lines {
		appReq.Lines = append(appReq.Lines, appledger.DocumentLineRequest{
			Description:     line.Description,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			DiscountAmount:  line.DiscountAmount,
			TaxRate:         line.TaxRate,
			TaxAmount:       line.TaxAmount,
		})
	}

	result, err := h.obligations.CreateDocument(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Get handles GET /documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	documentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.obligations.GetDocument(c.Request.Context(), companyID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List handles GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	var req DocumentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter, err := buildDocumentFilter(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.obligations.ListDocuments(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Outstanding handles GET /parties/:id/outstanding-documents
func (h *DocumentHandler) Outstanding(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	partyID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	results, err := h.obligations.OutstandingDocuments(c.Request.Context(), companyID, partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// Cancel handles POST /documents/:id/cancel
func (h *DocumentHandler) Cancel(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	documentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.obligations.CancelDocument(c.Request.Context(), companyID, documentID, actorID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Reverse handles POST /documents/:id/reverse
func (h *DocumentHandler) Reverse(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	documentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req ReverseDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reversals.ReverseDocument(c.Request.Context(), appledger.ReverseDocumentRequest{
		CompanyID:    companyID,
		DocumentID:   documentID,
		Reason:       req.Reason,
		ReversalDate: req.ReversalDate,
		ActorID:      actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

func buildDocumentFilter(req DocumentListRequest) (ledger.DocumentFilter, error) {
	filter := ledger.DocumentFilter{}
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.OrderBy = req.OrderBy
	filter.OrderDir = req.OrderDir
	filter.Search = req.Search

	if req.PartyID != "" {
		id, err := uuid.Parse(req.PartyID)
		if err != nil {
			return filter, err
		}
		filter.PartyID = &id
	}
	if req.Type != "" {
		t := ledger.DocumentType(req.Type)
		filter.Type = &t
	}
	if req.Direction != "" {
		d := ledger.DocumentDirection(req.Direction)
		filter.Direction = &d
	}
	if req.Status != "" {
		s := ledger.DocumentStatus(req.Status)
		filter.Status = &s
	}
	if req.FromDate != "" {
		from, err := time.Parse("2006-01-02", req.FromDate)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &from
	}
	if req.ToDate != "" {
		to, err := time.Parse("2006-01-02", req.ToDate)
		if err != nil {
			return filter, err
		}
		filter.ToDate = &to
	}
	return filter, nil
}
