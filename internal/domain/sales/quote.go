package sales

import (
	"fmt"
	"time"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the workflow state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusDeclined QuoteStatus = "DECLINED"
	QuoteStatusExpired  QuoteStatus = "EXPIRED"
)

// CanTransitionTo checks if the status can transition to the target status
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return target == QuoteStatusSent
	case QuoteStatusSent:
		return target == QuoteStatusAccepted || target == QuoteStatusDeclined || target == QuoteStatusExpired
	}
	return false
}

// QuoteLine is a persisted line of a quote
type QuoteLine struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	QuoteID  uuid.UUID `gorm:"type:uuid;not null;index"`
	LineNo   int       `gorm:"not null"`
	LineItem `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (QuoteLine) TableName() string {
	return "quote_lines"
}

// Quote is the aggregate root for a price quotation
type Quote struct {
	shared.BaseAggregateRoot
	ClientID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuoteNumber        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Date               time.Time       `gorm:"type:date;not null"`
	ValidUntil         *time.Time      `gorm:"type:date"`
	Status             QuoteStatus     `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Lines              []QuoteLine     `gorm:"foreignKey:QuoteID;references:ID"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VATAmount          decimal.Decimal `gorm:"column:vat_amount;type:decimal(18,4);not null;default:0"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ConvertedInvoiceID *uuid.UUID      `gorm:"type:uuid"`
	Notes              string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Quote) TableName() string {
	return "quotes"
}

// NewQuote creates a draft quote with its full line set
func NewQuote(clientID uuid.UUID, quoteNumber string, date time.Time, lines []LineItem) (*Quote, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if quoteNumber == "" || len(quoteNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_QUOTE_NUMBER", "Quote number must be 1-50 characters")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Quote date is required")
	}

	quote := &Quote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		QuoteNumber:       quoteNumber,
		Date:              date,
		Status:            QuoteStatusDraft,
	}
	if err := quote.setLines(lines); err != nil {
		return nil, err
	}
	return quote, nil
}

// ReplaceLines discards every existing line and recomputes the totals
func (q *Quote) ReplaceLines(lines []LineItem) error {
	if q.Status != QuoteStatusDraft && q.Status != QuoteStatusSent {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit lines of quote in %s status", q.Status))
	}
	if err := q.setLines(lines); err != nil {
		return err
	}
	q.MarkModified()
	return nil
}

func (q *Quote) setLines(lines []LineItem) error {
	prepared, totals, err := prepareLines(lines, false)
	if err != nil {
		return err
	}
	q.Lines = make([]QuoteLine, len(prepared))
	for n, line := range prepared {
		q.Lines[n] = QuoteLine{
			ID:       uuid.New(),
			QuoteID:  q.ID,
			LineNo:   n + 1,
			LineItem: line,
		}
	}
	q.Subtotal = totals.Subtotal
	q.VATAmount = totals.VATAmount
	q.TotalAmount = totals.TotalAmount
	return nil
}

// Send marks the quote as issued
func (q *Quote) Send() error { return q.transition(QuoteStatusSent) }

// Accept records client acceptance
func (q *Quote) Accept() error { return q.transition(QuoteStatusAccepted) }

// Decline records client rejection
func (q *Quote) Decline() error { return q.transition(QuoteStatusDeclined) }

// Expire marks the quote as lapsed
func (q *Quote) Expire() error { return q.transition(QuoteStatusExpired) }

func (q *Quote) transition(target QuoteStatus) error {
	if !q.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move quote from %s to %s", q.Status, target))
	}
	q.Status = target
	q.MarkModified()
	return nil
}

// ConvertToInvoice creates a draft invoice carrying the accepted quote's lines
func (q *Quote) ConvertToInvoice(invoiceNumber string, date time.Time, isVATInvoice bool) (*Invoice, error) {
	if q.Status != QuoteStatusAccepted {
		return nil, shared.NewDomainError("INVALID_STATE", "Only accepted quotes can be converted")
	}
	if q.ConvertedInvoiceID != nil {
		return nil, shared.NewDomainError("ALREADY_CONVERTED", "Quote has already been converted to an invoice")
	}

	invoice, err := NewInvoice(q.ClientID, invoiceNumber, date, isVATInvoice, q.LineItems())
	if err != nil {
		return nil, err
	}
	quoteID := q.ID
	invoice.SourceQuoteID = &quoteID
	invoice.Notes = q.Notes

	q.ConvertedInvoiceID = &invoice.ID
	q.MarkModified()
	return invoice, nil
}

// LineItems returns the line values in line order
func (q *Quote) LineItems() []LineItem {
	items := make([]LineItem, len(q.Lines))
	for n, line := range q.Lines {
		items[n] = line.LineItem
	}
	return items
}
