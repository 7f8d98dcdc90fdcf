package handler

import (
	"fmt"
	"net/http"

	appledger "github.com/finbooks/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// PrintHandler serves rendered PDFs for payments and documents.
type PrintHandler struct {
	BaseHandler
	receipts *appledger.ReceiptService
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(receipts *appledger.ReceiptService) *PrintHandler {
	return &PrintHandler{receipts: receipts}
}

// PaymentReceipt handles GET /payments/:id/receipt
func (h *PrintHandler) PaymentReceipt(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	pdf, err := h.receipts.RenderPaymentReceipt(c.Request.Context(), companyID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"receipt-%s.pdf\"", paymentID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Document handles GET /documents/:id/pdf
func (h *PrintHandler) Document(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	documentID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	pdf, err := h.receipts.RenderDocument(c.Request.Context(), companyID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"document-%s.pdf\"", documentID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
