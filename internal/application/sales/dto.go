package sales

import (
	"time"

	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineInput is one requested document line
type LineInput struct {
	StockItemID *uuid.UUID
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
}

// CreateInvoiceCommand creates a draft invoice with its lines
type CreateInvoiceCommand struct {
	ClientID      uuid.UUID
	InvoiceNumber string
	Date          time.Time
	DueDate       *time.Time
	IsVATInvoice  bool
	Notes         string
	Lines         []LineInput
}

// CreateQuoteCommand creates a draft quote with its lines
type CreateQuoteCommand struct {
	ClientID    uuid.UUID
	QuoteNumber string
	Date        time.Time
	ValidUntil  *time.Time
	Notes       string
	Lines       []LineInput
}

// ConvertQuoteCommand turns an accepted quote into a draft invoice
type ConvertQuoteCommand struct {
	InvoiceNumber string
	Date          time.Time
	IsVATInvoice  bool
}

// RecordPaymentCommand records a client payment
type RecordPaymentCommand struct {
	ClientID          uuid.UUID
	InvoiceID         *uuid.UUID
	Date              time.Time
	CustomerReference string
	Amount            decimal.Decimal
	Method            sales.PaymentMethod
	AllocationType    sales.AllocationType
	Notes             string
}

// InvoiceAction is a requested invoice status change
type InvoiceAction string

const (
	InvoiceActionSend   InvoiceAction = "send"
	InvoiceActionCancel InvoiceAction = "cancel"
)

// QuoteAction is a requested quote status change
type QuoteAction string

const (
	QuoteActionSend    QuoteAction = "send"
	QuoteActionAccept  QuoteAction = "accept"
	QuoteActionDecline QuoteAction = "decline"
	QuoteActionExpire  QuoteAction = "expire"
)

// toLineItems validates and converts requested lines.
// The document aggregate rejects an empty set.
func toLineItems(inputs []LineInput) ([]sales.LineItem, error) {
	lines := make([]sales.LineItem, 0, len(inputs))
	for _, in := range inputs {
		line, err := sales.NewLineItem(in.Description, in.Quantity, in.UnitPrice, in.VATRate)
		if err != nil {
			return nil, err
		}
		line.StockItemID = in.StockItemID
		lines = append(lines, line)
	}
	return lines, nil
}
