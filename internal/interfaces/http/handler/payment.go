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

// PaymentHandler exposes payment recording and lookup endpoints.
type PaymentHandler struct {
	BaseHandler
	payments *appledger.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *appledger.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RecordPaymentRequest is the record-payment request body. Source fields are
// checked against the payment type by the application layer.
type RecordPaymentRequest struct {
	Type              string          `json:"type" binding:"required,oneof=CASH_IN CASH_OUT BANK_IN BANK_OUT POS_IN TRANSFER"`
	Direction         string          `json:"direction,omitempty" binding:"omitempty,oneof=IN OUT"`
	PartyID           *string         `json:"party_id,omitempty" binding:"omitempty,uuid"`
	BranchID          *string         `json:"branch_id,omitempty" binding:"omitempty,uuid"`
	CashboxID         *string         `json:"cashbox_id,omitempty" binding:"omitempty,uuid"`
	BankAccountID     *string         `json:"bank_account_id,omitempty" binding:"omitempty,uuid"`
	FromCashboxID     *string         `json:"from_cashbox_id,omitempty" binding:"omitempty,uuid"`
	ToCashboxID       *string         `json:"to_cashbox_id,omitempty" binding:"omitempty,uuid"`
	FromBankAccountID *string         `json:"from_bank_account_id,omitempty" binding:"omitempty,uuid"`
	ToBankAccountID   *string         `json:"to_bank_account_id,omitempty" binding:"omitempty,uuid"`
	PaymentDate       time.Time       `json:"payment_date" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	Description       string          `json:"description"`
	Reference         string          `json:"reference"`
}

// PaymentListRequest holds the list query parameters
type PaymentListRequest struct {
	dto.ListRequest
	PartyID   string `form:"party_id" binding:"omitempty,uuid"`
	Type      string `form:"type" binding:"omitempty,oneof=CASH_IN CASH_OUT BANK_IN BANK_OUT POS_IN TRANSFER"`
	Direction string `form:"direction" binding:"omitempty,oneof=IN OUT"`
	Status    string `form:"status" binding:"omitempty,oneof=CONFIRMED CANCELLED"`
	FromDate  string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate    string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// Record handles POST /payments
func (h *PaymentHandler) Record(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	paymentType := ledger.PaymentType(req.Type)
	direction := ledger.PaymentDirection(req.Direction)
	if fixed, ok := paymentType.RequiredDirection(); ok {
		direction = fixed
	} else if direction == "" {
		h.BadRequest(c, "direction is required for transfer payments")
		return
	}

	appReq := appledger.RecordPaymentRequest{
		CompanyID:   companyID,
		Type:        paymentType,
		Direction:   direction,
		PaymentDate: req.PaymentDate,
		Amount:      req.Amount,
		Description: req.Description,
		Reference:   req.Reference,
		ActorID:     actorID,
	}

	var err error
	if appReq.PartyID, err = parseOptionalUUID(req.PartyID); err != nil {
		h.BadRequest(c, "Invalid party_id")
		return
	}
	if appReq.BranchID, err = parseOptionalUUID(req.BranchID); err != nil {
		h.BadRequest(c, "Invalid branch_id")
		return
	}
	if appReq.Sources, err = buildPaymentSources(req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.payments.RecordPayment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.payments.GetPayment(c.Request.Context(), companyID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List handles GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	var req PaymentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter, err := buildPaymentFilter(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.payments.ListPayments(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func buildPaymentSources(req RecordPaymentRequest) (ledger.PaymentSources, error) {
	var sources ledger.PaymentSources
	var err error
	if sources.CashboxID, err = parseOptionalUUID(req.CashboxID); err != nil {
		return sources, err
	}
	if sources.BankAccountID, err = parseOptionalUUID(req.BankAccountID); err != nil {
		return sources, err
	}
	if sources.FromCashboxID, err = parseOptionalUUID(req.FromCashboxID); err != nil {
		return sources, err
	}
	if sources.ToCashboxID, err = parseOptionalUUID(req.ToCashboxID); err != nil {
		return sources, err
	}
	if sources.FromBankAccountID, err = parseOptionalUUID(req.FromBankAccountID); err != nil {
		return sources, err
	}
	if sources.ToBankAccountID, err = parseOptionalUUID(req.ToBankAccountID); err != nil {
		return sources, err
	}
	return sources, nil
}

func buildPaymentFilter(req PaymentListRequest) (ledger.PaymentFilter, error) {
	filter := ledger.PaymentFilter{}
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
		t := ledger.PaymentType(req.Type)
		filter.Type = &t
	}
	if req.Direction != "" {
		d := ledger.PaymentDirection(req.Direction)
		filter.Direction = &d
	}
	if req.Status != "" {
		s := ledger.PaymentStatus(req.Status)
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
