package sales

import (
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DocumentTotals holds the header amounts of an invoice or quote
type DocumentTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CalculateTotals sums an ordered line set. An empty set yields zero totals;
// rejecting empty documents is the caller's job.
func CalculateTotals(lines []LineItem) DocumentTotals {
	subtotal := decimal.Zero
	vat := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.NetAmount())
		vat = vat.Add(line.VATAmount())
	}
	return DocumentTotals{
		Subtotal:    subtotal,
		VATAmount:   vat,
		TotalAmount: subtotal.Add(vat),
	}
}

// Rounded returns the totals rounded to cents for display
func (t DocumentTotals) Rounded() DocumentTotals {
	return DocumentTotals{
		Subtotal:    t.Subtotal.Round(2),
		VATAmount:   t.VATAmount.Round(2),
		TotalAmount: t.TotalAmount.Round(2),
	}
}

// prepareLines validates a full line set and applies the VAT policy
func prepareLines(lines []LineItem, zeroVAT bool) ([]LineItem, DocumentTotals, error) {
	if len(lines) == 0 {
		return nil, DocumentTotals{}, shared.NewDomainError("EMPTY_DOCUMENT", "Document must have at least one line")
	}
	prepared := make([]LineItem, len(lines))
	for i, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, DocumentTotals{}, err
		}
		if zeroVAT {
			line = line.WithoutVAT()
		}
		prepared[i] = line
	}
	return prepared, CalculateTotals(prepared), nil
}

func newLineError(message string) error {
	return shared.NewDomainError("INVALID_LINE_ITEM", message)
}
