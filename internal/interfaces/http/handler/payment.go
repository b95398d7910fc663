package handler

import (
	"strings"

	salesapp "github.com/bizledger/backend/internal/application/sales"
	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	payments *salesapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *salesapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RecordPaymentRequest records a client payment. AllocationType defaults to
// INVOICE when an invoice is given and ACCOUNT otherwise.
type RecordPaymentRequest struct {
	ClientID          uuid.UUID       `json:"client_id" binding:"required"`
	InvoiceID         *uuid.UUID      `json:"invoice_id"`
	Date              string          `json:"date" binding:"required,datetime=2006-01-02"`
	CustomerReference string          `json:"customer_reference" binding:"max=100"`
	Amount            decimal.Decimal `json:"amount"`
	Method            string          `json:"method" binding:"required"`
	AllocationType    string          `json:"allocation_type" binding:"omitempty,oneof=INVOICE ACCOUNT invoice account"`
	Notes             string          `json:"notes" binding:"max=2000"`
}

// Record handles POST /payments
func (h *PaymentHandler) Record(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date")
		return
	}

	allocation := sales.AllocationType(strings.ToUpper(req.AllocationType))
	if allocation == "" {
		allocation = sales.AllocationAccount
		if req.InvoiceID != nil {
			allocation = sales.AllocationInvoice
		}
	}

	payment, err := h.payments.RecordPayment(c.Request.Context(), salesapp.RecordPaymentCommand{
		ClientID:          req.ClientID,
		InvoiceID:         req.InvoiceID,
		Date:              date,
		CustomerReference: req.CustomerReference,
		Amount:            req.Amount,
		Method:            sales.PaymentMethod(strings.ToUpper(req.Method)),
		AllocationType:    allocation,
		Notes:             req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPaymentResponse(payment))
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}
