package handler

import (
	appparty "github.com/finbooks/backend/internal/application/party"
	"github.com/finbooks/backend/internal/domain/party"
	"github.com/finbooks/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PartyHandler exposes party management endpoints.
type PartyHandler struct {
	BaseHandler
	parties *appparty.PartyService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(parties *appparty.PartyService) *PartyHandler {
	return &PartyHandler{parties: parties}
}

// CreatePartyRequest is the create-party request body
type CreatePartyRequest struct {
	Type     string  `json:"type" binding:"required,oneof=CUSTOMER SUPPLIER EMPLOYEE TAX_AUTHORITY BANK OTHER"`
	Name     string  `json:"name" binding:"required,max=255"`
	BranchID *string `json:"branch_id,omitempty" binding:"omitempty,uuid"`
	Email    string  `json:"email" binding:"omitempty,email"`
	Phone    string  `json:"phone" binding:"omitempty,max=50"`
	Address  string  `json:"address" binding:"omitempty,max=500"`
	TaxID    string  `json:"tax_id" binding:"omitempty,max=50"`
	Remark   string  `json:"remark" binding:"omitempty,max=500"`
}

// UpdatePartyRequest is the update-party request body. Empty fields are
// left unchanged.
type UpdatePartyRequest struct {
	Name    string `json:"name" binding:"omitempty,max=255"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"omitempty,max=50"`
	Address string `json:"address" binding:"omitempty,max=500"`
}

// PartyListRequest holds the list query parameters
type PartyListRequest struct {
	dto.ListRequest
	Type     string `form:"type" binding:"omitempty,oneof=CUSTOMER SUPPLIER EMPLOYEE TAX_AUTHORITY BANK OTHER"`
	IsActive *bool  `form:"is_active"`
}

// Create handles POST /parties
func (h *PartyHandler) Create(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := appparty.CreatePartyRequest{
		CompanyID: companyID,
		Type:      party.PartyType(req.Type),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		TaxID:     req.TaxID,
		Remark:    req.Remark,
		ActorID:   actorID,
	}
	if req.BranchID != nil {
		branchID, err := uuid.Parse(*req.BranchID)
		if err != nil {
			h.BadRequest(c, "Invalid branch_id")
			return
		}
		appReq.BranchID = &branchID
	}

	p, err := h.parties.CreateParty(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Update handles PUT /parties/:id
func (h *PartyHandler) Update(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	partyID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	p, err := h.parties.UpdateParty(c.Request.Context(), appparty.UpdatePartyRequest{
		CompanyID: companyID,
		PartyID:   partyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		ActorID:   actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Get handles GET /parties/:id
func (h *PartyHandler) Get(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	partyID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.parties.GetParty(c.Request.Context(), companyID, partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// List handles GET /parties
func (h *PartyHandler) List(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	var req PartyListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := party.PartyFilter{Filter: req.ToFilter(), IsActive: req.IsActive}
	if req.Type != "" {
		t := party.PartyType(req.Type)
		filter.Type = &t
	}

	page, err := h.parties.ListParties(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Deactivate handles POST /parties/:id/deactivate
func (h *PartyHandler) Deactivate(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	partyID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.parties.DeactivateParty(c.Request.Context(), companyID, partyID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Activate handles POST /parties/:id/activate
func (h *PartyHandler) Activate(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	partyID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.parties.ActivateParty(c.Request.Context(), companyID, partyID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// BalanceSummary handles GET /parties/:id/balance
func (h *PartyHandler) BalanceSummary(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	partyID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.parties.BalanceSummary(c.Request.Context(), companyID, partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
