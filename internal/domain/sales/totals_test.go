package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func scenarioLines() []LineItem {
	return []LineItem{
		{Description: "Consulting hours", Quantity: 10, UnitPrice: dec("150.00"), VATRate: dec("15")},
		{Description: "Licence", Quantity: 2, UnitPrice: dec("850.00"), VATRate: dec("15")},
	}
}

func TestCalculateTotals(t *testing.T) {
	t.Run("two standard rated lines", func(t *testing.T) {
		totals := CalculateTotals(scenarioLines())

		assert.True(t, dec("3200").Equal(totals.Subtotal), "subtotal %s", totals.Subtotal)
		assert.True(t, dec("480").Equal(totals.VATAmount), "vat %s", totals.VATAmount)
		assert.True(t, dec("3680").Equal(totals.TotalAmount), "total %s", totals.TotalAmount)
	})

	t.Run("empty list returns zeros", func(t *testing.T) {
		totals := CalculateTotals(nil)

		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.VATAmount.IsZero())
		assert.True(t, totals.TotalAmount.IsZero())
	})

	t.Run("total equals subtotal plus vat and sum of line totals", func(t *testing.T) {
		lines := []LineItem{
			{Quantity: 3, UnitPrice: dec("33.33"), VATRate: dec("15")},
			{Quantity: 7, UnitPrice: dec("0.99"), VATRate: dec("0")},
			{Quantity: 1, UnitPrice: dec("1234.5678"), VATRate: dec("7.5")},
		}
		totals := CalculateTotals(lines)

		sumNet := decimal.Zero
		sumLine := decimal.Zero
		for _, l := range lines {
			sumNet = sumNet.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
			sumLine = sumLine.Add(l.LineTotal())
		}
		assert.True(t, totals.TotalAmount.Equal(totals.Subtotal.Add(totals.VATAmount)))
		assert.True(t, totals.Subtotal.Equal(sumNet))
		assert.True(t, totals.TotalAmount.Equal(sumLine))
	})

	t.Run("repeated calls give identical results", func(t *testing.T) {
		lines := scenarioLines()
		first := CalculateTotals(lines)
		second := CalculateTotals(lines)

		assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
		assert.Equal(t, first.VATAmount.String(), second.VATAmount.String())
		assert.Equal(t, first.TotalAmount.String(), second.TotalAmount.String())
	})
}

func TestDocumentTotals_Rounded(t *testing.T) {
	totals := CalculateTotals([]LineItem{{Quantity: 3, UnitPrice: dec("33.33"), VATRate: dec("15")}})
	rounded := totals.Rounded()

	assert.Equal(t, "99.99", rounded.Subtotal.StringFixed(2))
	assert.Equal(t, "15.00", rounded.VATAmount.StringFixed(2))
	assert.Equal(t, "114.99", rounded.TotalAmount.StringFixed(2))
}
