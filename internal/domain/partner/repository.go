package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindAll returns every supplier ordered by name
	FindAll(ctx context.Context) ([]Supplier, error)

	// Create inserts a new supplier
	Create(ctx context.Context, supplier *Supplier) error

	// SaveWithLock updates editable fields, checking the previous version
	SaveWithLock(ctx context.Context, supplier *Supplier) error

	// IncrementBalance atomically adds delta to current_balance.
	// Returns shared.ErrNotFound when no row matches.
	IncrementBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	Create(ctx context.Context, client *Client) error
}
