package handler

import (
	salesapp "github.com/bizledger/backend/internal/application/sales"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	documents *salesapp.DocumentService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(documents *salesapp.DocumentService) *InvoiceHandler {
	return &InvoiceHandler{documents: documents}
}

// CreateInvoiceRequest creates a draft invoice. IsVATInvoice defaults to true.
type CreateInvoiceRequest struct {
	ClientID      uuid.UUID     `json:"client_id" binding:"required"`
	InvoiceNumber string        `json:"invoice_number" binding:"required,max=50"`
	Date          string        `json:"date" binding:"required,datetime=2006-01-02"`
	DueDate       *string       `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	IsVATInvoice  *bool         `json:"is_vat_invoice"`
	Notes         string        `json:"notes" binding:"max=2000"`
	Lines         []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date")
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due_date")
		return
	}
	isVAT := true
	if req.IsVATInvoice != nil {
		isVAT = *req.IsVATInvoice
	}

	invoice, err := h.documents.CreateInvoice(c.Request.Context(), salesapp.CreateInvoiceCommand{
		ClientID:      req.ClientID,
		InvoiceNumber: req.InvoiceNumber,
		Date:          date,
		DueDate:       dueDate,
		IsVATInvoice:  isVAT,
		Notes:         req.Notes,
		Lines:         toLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toInvoiceResponse(invoice))
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.documents.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(invoice))
}

// ReplaceLines handles PUT /invoices/:id/lines
func (h *InvoiceHandler) ReplaceLines(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ReplaceLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	invoice, err := h.documents.ReplaceInvoiceLines(c.Request.Context(), id, toLineInputs(req.Lines))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(invoice))
}

// ChangeStatus handles POST /invoices/:id/status with action send or cancel
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req StatusActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	invoice, err := h.documents.ChangeInvoiceStatus(c.Request.Context(), id, salesapp.InvoiceAction(req.Action))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(invoice))
}

// SetVATModeRequest switches an invoice between VAT and non-VAT
type SetVATModeRequest struct {
	IsVATInvoice *bool `json:"is_vat_invoice" binding:"required"`
}

// SetVATMode handles PATCH /invoices/:id/vat
func (h *InvoiceHandler) SetVATMode(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req SetVATModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	invoice, err := h.documents.SetInvoiceVATMode(c.Request.Context(), id, *req.IsVATInvoice)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(invoice))
}
