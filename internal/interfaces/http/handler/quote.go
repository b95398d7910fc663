package handler

import (
	salesapp "github.com/bizledger/backend/internal/application/sales"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuoteHandler handles quote endpoints
type QuoteHandler struct {
	BaseHandler
	documents *salesapp.DocumentService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(documents *salesapp.DocumentService) *QuoteHandler {
	return &QuoteHandler{documents: documents}
}

// CreateQuoteRequest creates a draft quote
type CreateQuoteRequest struct {
	ClientID    uuid.UUID     `json:"client_id" binding:"required"`
	QuoteNumber string        `json:"quote_number" binding:"required,max=50"`
	Date        string        `json:"date" binding:"required,datetime=2006-01-02"`
	ValidUntil  *string       `json:"valid_until" binding:"omitempty,datetime=2006-01-02"`
	Notes       string        `json:"notes" binding:"max=2000"`
	Lines       []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ConvertQuoteRequest names the invoice created from an accepted quote
type ConvertQuoteRequest struct {
	InvoiceNumber string `json:"invoice_number" binding:"required,max=50"`
	Date          string `json:"date" binding:"required,datetime=2006-01-02"`
	IsVATInvoice  *bool  `json:"is_vat_invoice"`
}

// Create handles POST /quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date")
		return
	}
	validUntil, err := parseOptionalDate(req.ValidUntil)
	if err != nil {
		h.BadRequest(c, "Invalid valid_until")
		return
	}

	quote, err := h.documents.CreateQuote(c.Request.Context(), salesapp.CreateQuoteCommand{
		ClientID:    req.ClientID,
		QuoteNumber: req.QuoteNumber,
		Date:        date,
		ValidUntil:  validUntil,
		Notes:       req.Notes,
		Lines:       toLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toQuoteResponse(quote))
}

// Get handles GET /quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	quote, err := h.documents.GetQuote(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toQuoteResponse(quote))
}

// ReplaceLines handles PUT /quotes/:id/lines
func (h *QuoteHandler) ReplaceLines(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ReplaceLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	quote, err := h.documents.ReplaceQuoteLines(c.Request.Context(), id, toLineInputs(req.Lines))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toQuoteResponse(quote))
}

// ChangeStatus handles POST /quotes/:id/status with action send, accept, decline or expire
func (h *QuoteHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req StatusActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	quote, err := h.documents.ChangeQuoteStatus(c.Request.Context(), id, salesapp.QuoteAction(req.Action))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toQuoteResponse(quote))
}

// Convert handles POST /quotes/:id/convert
func (h *QuoteHandler) Convert(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ConvertQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date")
		return
	}
	isVAT := true
	if req.IsVATInvoice != nil {
		isVAT = *req.IsVATInvoice
	}

	invoice, err := h.documents.ConvertQuote(c.Request.Context(), id, salesapp.ConvertQuoteCommand{
		InvoiceNumber: req.InvoiceNumber,
		Date:          date,
		IsVATInvoice:  isVAT,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toInvoiceResponse(invoice))
}
