package handler

import (
	"time"

	appledger "github.com/finbooks/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationHandler exposes allocation create and cancel endpoints.
type AllocationHandler struct {
	BaseHandler
	allocations *appledger.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(allocations *appledger.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocations: allocations}
}

// AllocationItemRequest is one payment-to-document application. Date and
// notes are optional and default to the batch-level values.
type AllocationItemRequest struct {
	DocumentID     string          `json:"document_id" binding:"required,uuid"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	AllocationDate time.Time       `json:"allocation_date,omitempty"`
	Notes          string          `json:"notes"`
}

// AllocateRequest is the allocate request body
type AllocateRequest struct {
	PaymentID      string                  `json:"payment_id" binding:"required,uuid"`
	Items          []AllocationItemRequest `json:"items" binding:"required,min=1,dive"`
	AllocationDate time.Time               `json:"allocation_date,omitempty"`
	Notes          string                  `json:"notes"`
}

// Allocate handles POST /allocations
func (h *AllocationHandler) Allocate(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		h.BadRequest(c, "Invalid payment_id")
		return
	}

	appReq := appledger.AllocateRequest{
		CompanyID:      companyID,
		PaymentID:      paymentID,
		AllocationDate: req.AllocationDate,
		Notes:          req.Notes,
		ActorID:        actorID,
	}
	for _, item := range req.Items {
		documentID, err := uuid.Parse(item.DocumentID)
		if err != nil {
			h.BadRequest(c, "Invalid document_id")
			return
		}
		appReq.Items = append(appReq.Items, appledger.AllocationItem{
			DocumentID:     documentID,
			Amount:         item.Amount,
			AllocationDate: item.AllocationDate,
			Notes:          item.Notes,
		})
	}

	result, err := h.allocations.Allocate(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Cancel handles POST /allocations/:id/cancel
func (h *AllocationHandler) Cancel(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	allocationID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	doc, err := h.allocations.CancelAllocation(c.Request.Context(), companyID, allocationID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}
