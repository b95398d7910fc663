// Package ledger builds client statements from invoice and payment history.
// Statements are derived views and are never persisted.
package ledger

import (
	"sort"
	"time"

	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType distinguishes debit and credit statement lines
type EntryType string

const (
	EntryTypeInvoice EntryType = "INVOICE"
	EntryTypePayment EntryType = "PAYMENT"
)

// StatementEntry is one line of a statement with the balance after it
type StatementEntry struct {
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference"`
	Type      EntryType       `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	SourceID  uuid.UUID       `json:"source_id"`
}

// Statement is a point-in-time running balance for one client
type Statement struct {
	ClientID       uuid.UUID        `json:"client_id"`
	Cutoff         time.Time        `json:"cutoff"`
	Entries        []StatementEntry `json:"entries"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
}

// GenerateStatement merges invoices (as debits) and payments (as credits) dated on
// or before cutoff into one chronological sequence with a running balance.
//
// Dates compare by calendar day. Entries on the same day keep merge order:
// invoices first in their given order, then payments in their given order.
func GenerateStatement(invoices []sales.Invoice, payments []sales.Payment, cutoff time.Time) Statement {
	cutoffDay := dateOnly(cutoff)
	entries := make([]StatementEntry, 0, len(invoices)+len(payments))

	for _, inv := range invoices {
		if dateOnly(inv.Date).After(cutoffDay) {
			continue
		}
		entries = append(entries, StatementEntry{
			Date:      dateOnly(inv.Date),
			Reference: inv.InvoiceNumber,
			Type:      EntryTypeInvoice,
			Amount:    inv.TotalAmount,
			SourceID:  inv.ID,
		})
	}
	for _, p := range payments {
		if dateOnly(p.Date).After(cutoffDay) {
			continue
		}
		entries = append(entries, StatementEntry{
			Date:      dateOnly(p.Date),
			Reference: p.CustomerReference,
			Type:      EntryTypePayment,
			Amount:    p.Amount.Neg(),
			SourceID:  p.ID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	balance := decimal.Zero
	for i := range entries {
		balance = balance.Add(entries[i].Amount)
		entries[i].Balance = balance
	}

	return Statement{
		Cutoff:         cutoffDay,
		Entries:        entries,
		ClosingBalance: balance,
	}
}

// dateOnly truncates t to its UTC calendar day
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
