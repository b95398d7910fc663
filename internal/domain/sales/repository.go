package sales

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByClient returns a client's invoices ordered by date, then creation time
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]Invoice, error)

	// ExistsByNumber checks whether an invoice number is taken
	ExistsByNumber(ctx context.Context, number string) (bool, error)

	// Create inserts the header and every line
	Create(ctx context.Context, invoice *Invoice) error

	// ReplaceLines deletes all stored lines, inserts the current set and updates the header
	ReplaceLines(ctx context.Context, invoice *Invoice) error

	// SaveWithLock updates header fields, checking the previous version
	SaveWithLock(ctx context.Context, invoice *Invoice) error
}

// QuoteRepository defines the interface for quote persistence
type QuoteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	Create(ctx context.Context, quote *Quote) error
	ReplaceLines(ctx context.Context, quote *Quote) error
	SaveWithLock(ctx context.Context, quote *Quote) error
}

// PaymentRepository defines the interface for payment persistence.
// Payments are append-only.
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByClient returns a client's payments ordered by date, then creation time
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]Payment, error)

	Create(ctx context.Context, payment *Payment) error
}
