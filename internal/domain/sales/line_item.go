package sales

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// MaxVATRate is the upper bound of a line VAT percentage
	MaxVATRate = decimal.NewFromInt(100)
)

// LineItem is a single priced line on an invoice or quote.
// Totals are derived, never stored on the line.
type LineItem struct {
	StockItemID *uuid.UUID      `gorm:"type:uuid;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	VATRate     decimal.Decimal `gorm:"column:vat_rate;type:decimal(5,2);not null;default:0"`
}

// NewLineItem creates a validated line item
func NewLineItem(description string, quantity int, unitPrice, vatRate decimal.Decimal) (LineItem, error) {
	line := LineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		VATRate:     vatRate,
	}
	if err := line.Validate(); err != nil {
		return LineItem{}, err
	}
	return line, nil
}

// CalculateLineTotal returns quantity * unitPrice * (1 + vatRate/100) at full precision.
func CalculateLineTotal(quantity int, unitPrice, vatRate decimal.Decimal) decimal.Decimal {
	net := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return net.Add(net.Mul(vatRate).Div(hundred))
}

// Validate checks quantity, price and VAT ranges
func (l LineItem) Validate() error {
	if l.Quantity <= 0 {
		return newLineError(fmt.Sprintf("quantity must be positive, got %d", l.Quantity))
	}
	if l.UnitPrice.IsNegative() {
		return newLineError("unit price cannot be negative")
	}
	if l.VATRate.IsNegative() || l.VATRate.GreaterThan(MaxVATRate) {
		return newLineError("VAT rate must be between 0 and 100")
	}
	return nil
}

// NetAmount returns quantity * unit price
func (l LineItem) NetAmount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// VATAmount returns the VAT portion of the line
func (l LineItem) VATAmount() decimal.Decimal {
	return l.NetAmount().Mul(l.VATRate).Div(hundred)
}

// LineTotal returns the VAT-inclusive line total at full precision
func (l LineItem) LineTotal() decimal.Decimal {
	return CalculateLineTotal(l.Quantity, l.UnitPrice, l.VATRate)
}

// DisplayLineTotal returns the line total rounded to cents
func (l LineItem) DisplayLineTotal() decimal.Decimal {
	return l.LineTotal().Round(2)
}

// WithoutVAT returns a copy of the line with a zero VAT rate
func (l LineItem) WithoutVAT() LineItem {
	l.VATRate = decimal.Zero
	return l
}
