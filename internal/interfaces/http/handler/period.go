package handler

import (
	"time"

	appledger "github.com/finbooks/backend/internal/application/ledger"
	"github.com/finbooks/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PeriodHandler exposes accounting period lock endpoints.
type PeriodHandler struct {
	BaseHandler
	periods *appledger.PeriodService
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler(periods *appledger.PeriodService) *PeriodHandler {
	return &PeriodHandler{periods: periods}
}

// LockPeriodRequest is the lock-period request body
type LockPeriodRequest struct {
	Year  int    `json:"year" binding:"required,min=2000,max=2100"`
	Month int    `json:"month" binding:"required,min=1,max=12"`
	Notes string `json:"notes"`
}

// UnlockPeriodRequest is the unlock-period request body
type UnlockPeriodRequest struct {
	Year   int    `json:"year" binding:"required,min=2000,max=2100"`
	Month  int    `json:"month" binding:"required,min=1,max=12"`
	Reason string `json:"reason" binding:"required"`
}

// Lock handles POST /periods/lock
func (h *PeriodHandler) Lock(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req LockPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	period, err := h.periods.LockPeriod(c.Request.Context(), companyID, req.Year, time.Month(req.Month), actorID, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, period)
}

// Unlock handles POST /periods/unlock
func (h *PeriodHandler) Unlock(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req UnlockPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	period, err := h.periods.UnlockPeriod(c.Request.Context(), companyID, req.Year, time.Month(req.Month), actorID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, period)
}

// List handles GET /periods
func (h *PeriodHandler) List(c *gin.Context) {
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

	periods, err := h.periods.ListPeriods(c.Request.Context(), companyID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, periods)
}
