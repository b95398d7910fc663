package sales

import (
	"fmt"
	"time"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the workflow state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusSent          InvoiceStatus = "SENT"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusSent || target == InvoiceStatusCancelled
	case InvoiceStatusSent:
		return target == InvoiceStatusPartiallyPaid || target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusPartiallyPaid:
		return target == InvoiceStatusPartiallyPaid || target == InvoiceStatusPaid
	}
	return false
}

// InvoiceLine is a persisted line of an invoice
type InvoiceLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index"`
	LineNo    int       `gorm:"not null"`
	LineItem  `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// Invoice is the aggregate root for a client invoice
type Invoice struct {
	shared.BaseAggregateRoot
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Date          time.Time       `gorm:"type:date;not null;index"`
	DueDate       *time.Time      `gorm:"type:date"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	IsVATInvoice  bool            `gorm:"column:is_vat_invoice;not null;default:true"`
	Lines         []InvoiceLine   `gorm:"foreignKey:InvoiceID;references:ID"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VATAmount     decimal.Decimal `gorm:"column:vat_amount;type:decimal(18,4);not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SourceQuoteID *uuid.UUID      `gorm:"type:uuid"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a draft invoice with its full line set.
// Non-VAT invoices have every line's VAT rate forced to zero.
func NewInvoice(clientID uuid.UUID, invoiceNumber string, date time.Time, isVATInvoice bool, lines []LineItem) (*Invoice, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Invoice date is required")
	}

	invoice := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		InvoiceNumber:     invoiceNumber,
		Date:              date,
		Status:            InvoiceStatusDraft,
		IsVATInvoice:      isVATInvoice,
		AmountPaid:        decimal.Zero,
	}
	if err := invoice.setLines(lines); err != nil {
		return nil, err
	}
	return invoice, nil
}

// ReplaceLines discards every existing line and recomputes the totals
func (i *Invoice) ReplaceLines(lines []LineItem) error {
	if !i.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit lines of invoice in %s status", i.Status))
	}
	if err := i.setLines(lines); err != nil {
		return err
	}
	i.MarkModified()
	return nil
}

// SetVATInvoice switches the VAT mode and recomputes totals.
// Switching a non-VAT invoice back to VAT keeps the zeroed rates; callers re-supply lines for that.
func (i *Invoice) SetVATInvoice(isVATInvoice bool) error {
	if !i.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit invoice in %s status", i.Status))
	}
	i.IsVATInvoice = isVATInvoice
	if err := i.setLines(i.LineItems()); err != nil {
		return err
	}
	i.MarkModified()
	return nil
}

func (i *Invoice) setLines(lines []LineItem) error {
	prepared, totals, err := prepareLines(lines, !i.IsVATInvoice)
	if err != nil {
		return err
	}
	i.Lines = make([]InvoiceLine, len(prepared))
	for n, line := range prepared {
		i.Lines[n] = InvoiceLine{
			ID:        uuid.New(),
			InvoiceID: i.ID,
			LineNo:    n + 1,
			LineItem:  line,
		}
	}
	i.applyTotals(totals)
	return nil
}

func (i *Invoice) applyTotals(t DocumentTotals) {
	i.Subtotal = t.Subtotal
	i.VATAmount = t.VATAmount
	i.TotalAmount = t.TotalAmount
}

// SetDueDate sets the payment due date
func (i *Invoice) SetDueDate(due *time.Time) error {
	if due != nil && due.Before(i.Date) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before the invoice date")
	}
	i.DueDate = due
	i.UpdatedAt = time.Now()
	return nil
}

// Send marks the invoice as issued to the client
func (i *Invoice) Send() error {
	return i.transition(InvoiceStatusSent)
}

// Cancel cancels an unpaid invoice
func (i *Invoice) Cancel() error {
	return i.transition(InvoiceStatusCancelled)
}

// ApplyPayment allocates a payment amount against the invoice
func (i *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(i.Outstanding()) {
		return shared.NewDomainError("OVERPAYMENT", fmt.Sprintf("Payment %s exceeds outstanding amount %s", amount.StringFixed(2), i.Outstanding().StringFixed(2)))
	}
	target := InvoiceStatusPartiallyPaid
	if i.AmountPaid.Add(amount).Equal(i.TotalAmount) {
		target = InvoiceStatusPaid
	}
	if err := i.transition(target); err != nil {
		return err
	}
	i.AmountPaid = i.AmountPaid.Add(amount)
	return nil
}

func (i *Invoice) transition(target InvoiceStatus) error {
	if !i.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move invoice from %s to %s", i.Status, target))
	}
	i.Status = target
	i.MarkModified()
	return nil
}

// Outstanding returns the unpaid part of the invoice total
func (i *Invoice) Outstanding() decimal.Decimal {
	return i.TotalAmount.Sub(i.AmountPaid)
}

// CanModify reports whether the line set may still be edited
func (i *Invoice) CanModify() bool {
	return i.Status == InvoiceStatusDraft || i.Status == InvoiceStatusSent
}

// LineItems returns the line values in line order
func (i *Invoice) LineItems() []LineItem {
	items := make([]LineItem, len(i.Lines))
	for n, line := range i.Lines {
		items[n] = line.LineItem
	}
	return items
}
