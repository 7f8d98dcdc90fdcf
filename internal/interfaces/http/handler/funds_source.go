package handler

import (
	appledger "github.com/finbooks/backend/internal/application/ledger"
	"github.com/finbooks/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FundsSourceHandler exposes cashbox and bank account endpoints.
type FundsSourceHandler struct {
	BaseHandler
	sources *appledger.FundsSourceService
}

// NewFundsSourceHandler creates a new FundsSourceHandler
func NewFundsSourceHandler(sources *appledger.FundsSourceService) *FundsSourceHandler {
	return &FundsSourceHandler{sources: sources}
}

// CreateCashboxRequest is the create-cashbox request body
type CreateCashboxRequest struct {
	Code     string  `json:"code" binding:"required,max=50"`
	Name     string  `json:"name" binding:"required,max=255"`
	BranchID *string `json:"branch_id,omitempty" binding:"omitempty,uuid"`
}

// CreateBankAccountRequest is the create-bank-account request body
type CreateBankAccountRequest struct {
	Code          string  `json:"code" binding:"required,max=50"`
	Name          string  `json:"name" binding:"required,max=255"`
	BankName      string  `json:"bank_name" binding:"required,max=255"`
	AccountNumber string  `json:"account_number" binding:"required,max=50"`
	IBAN          string  `json:"iban" binding:"omitempty,max=50"`
	BranchID      *string `json:"branch_id,omitempty" binding:"omitempty,uuid"`
}

// CreateCashbox handles POST /cashboxes
func (h *FundsSourceHandler) CreateCashbox(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req CreateCashboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := appledger.CreateCashboxRequest{
		CompanyID: companyID,
		Code:      req.Code,
		Name:      req.Name,
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

	box, err := h.sources.CreateCashbox(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, box)
}

// GetCashbox handles GET /cashboxes/:id
func (h *FundsSourceHandler) GetCashbox(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	cashboxID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	box, err := h.sources.GetCashbox(c.Request.Context(), companyID, cashboxID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, box)
}

// ListCashboxes handles GET /cashboxes
func (h *FundsSourceHandler) ListCashboxes(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	boxes, err := h.sources.ListCashboxes(c.Request.Context(), companyID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, boxes)
}

// DeactivateCashbox handles POST /cashboxes/:id/deactivate
func (h *FundsSourceHandler) DeactivateCashbox(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	cashboxID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	box, err := h.sources.DeactivateCashbox(c.Request.Context(), companyID, cashboxID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, box)
}

// CreateBankAccount handles POST /bank-accounts
func (h *FundsSourceHandler) CreateBankAccount(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := appledger.CreateBankAccountRequest{
		CompanyID:     companyID,
		Code:          req.Code,
		Name:          req.Name,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		IBAN:          req.IBAN,
		ActorID:       actorID,
	}
	if req.BranchID != nil {
		branchID, err := uuid.Parse(*req.BranchID)
		if err != nil {
			h.BadRequest(c, "Invalid branch_id")
			return
		}
		appReq.BranchID = &branchID
	}

	account, err := h.sources.CreateBankAccount(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// GetBankAccount handles GET /bank-accounts/:id
func (h *FundsSourceHandler) GetBankAccount(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	accountID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	account, err := h.sources.GetBankAccount(c.Request.Context(), companyID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// ListBankAccounts handles GET /bank-accounts
func (h *FundsSourceHandler) ListBankAccounts(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	accounts, err := h.sources.ListBankAccounts(c.Request.Context(), companyID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// DeactivateBankAccount handles POST /bank-accounts/:id/deactivate
func (h *FundsSourceHandler) DeactivateBankAccount(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	accountID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	account, err := h.sources.DeactivateBankAccount(c.Request.Context(), companyID, accountID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}
