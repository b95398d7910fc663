package handler

import (
	"time"

	salesapp "github.com/bizledger/backend/internal/application/sales"
	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineRequest is one requested invoice or quote line
type LineRequest struct {
	StockItemID *uuid.UUID      `json:"stock_item_id"`
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    int             `json:"quantity" binding:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

// ReplaceLinesRequest replaces the whole line set of a document
type ReplaceLinesRequest struct {
	Lines []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// StatusActionRequest requests a status transition
type StatusActionRequest struct {
	Action string `json:"action" binding:"required"`
}

func toLineInputs(lines []LineRequest) []salesapp.LineInput {
	inputs := make([]salesapp.LineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, salesapp.LineInput{
			StockItemID: l.StockItemID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			VATRate:     l.VATRate,
		})
	}
	return inputs
}

// LineResponse is a stored document line with its computed amounts
type LineResponse struct {
	LineNo      int             `json:"line_no"`
	StockItemID *uuid.UUID      `json:"stock_item_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

func toLineResponse(lineNo int, l sales.LineItem) LineResponse {
	return LineResponse{
		LineNo:      lineNo,
		StockItemID: l.StockItemID,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		VATRate:     l.VATRate,
		NetAmount:   l.NetAmount().Round(2),
		VATAmount:   l.VATAmount().Round(2),
		LineTotal:   l.DisplayLineTotal(),
	}
}

// InvoiceResponse is the API view of an invoice
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      uuid.UUID       `json:"client_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Date          string          `json:"date"`
	DueDate       *string         `json:"due_date,omitempty"`
	Status        string          `json:"status"`
	IsVATInvoice  bool            `json:"is_vat_invoice"`
	Lines         []LineResponse  `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	SourceQuoteID *uuid.UUID      `json:"source_quote_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toInvoiceResponse(inv *sales.Invoice) InvoiceResponse {
	lines := make([]LineResponse, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, toLineResponse(l.LineNo, l.LineItem))
	}
	return InvoiceResponse{
		ID:            inv.ID,
		ClientID:      inv.ClientID,
		InvoiceNumber: inv.InvoiceNumber,
		Date:          formatDate(inv.Date),
		DueDate:       formatOptionalDate(inv.DueDate),
		Status:        string(inv.Status),
		IsVATInvoice:  inv.IsVATInvoice,
		Lines:         lines,
		Subtotal:      inv.Subtotal,
		VATAmount:     inv.VATAmount,
		TotalAmount:   inv.TotalAmount,
		AmountPaid:    inv.AmountPaid,
		Outstanding:   inv.Outstanding(),
		SourceQuoteID: inv.SourceQuoteID,
		Notes:         inv.Notes,
		Version:       inv.Version,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// QuoteResponse is the API view of a quote
type QuoteResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ClientID           uuid.UUID       `json:"client_id"`
	QuoteNumber        string          `json:"quote_number"`
	Date               string          `json:"date"`
	ValidUntil         *string         `json:"valid_until,omitempty"`
	Status             string          `json:"status"`
	Lines              []LineResponse  `json:"lines"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	VATAmount          decimal.Decimal `json:"vat_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	ConvertedInvoiceID *uuid.UUID      `json:"converted_invoice_id,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	Version            int             `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func toQuoteResponse(q *sales.Quote) QuoteResponse {
	lines := make([]LineResponse, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, toLineResponse(l.LineNo, l.LineItem))
	}
	return QuoteResponse{
		ID:                 q.ID,
		ClientID:           q.ClientID,
		QuoteNumber:        q.QuoteNumber,
		Date:               formatDate(q.Date),
		ValidUntil:         formatOptionalDate(q.ValidUntil),
		Status:             string(q.Status),
		Lines:              lines,
		Subtotal:           q.Subtotal,
		VATAmount:          q.VATAmount,
		TotalAmount:        q.TotalAmount,
		ConvertedInvoiceID: q.ConvertedInvoiceID,
		Notes:              q.Notes,
		Version:            q.Version,
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
	}
}

// PaymentResponse is the API view of a payment
type PaymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	ClientID          uuid.UUID       `json:"client_id"`
	InvoiceID         *uuid.UUID      `json:"invoice_id,omitempty"`
	Date              string          `json:"date"`
	CustomerReference string          `json:"customer_reference,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Method            string          `json:"method"`
	AllocationType    string          `json:"allocation_type"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

func toPaymentResponse(p *sales.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID,
		ClientID:          p.ClientID,
		InvoiceID:         p.InvoiceID,
		Date:              formatDate(p.Date),
		CustomerReference: p.CustomerReference,
		Amount:            p.Amount,
		Method:            string(p.Method),
		AllocationType:    string(p.AllocationType),
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt,
	}
}
