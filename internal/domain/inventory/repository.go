package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockItemRepository defines the interface for stock item persistence
type StockItemRepository interface {
	// FindByID finds a stock item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockItem, error)

	// FindByCode finds a stock item by its stock code
	FindByCode(ctx context.Context, code string) (*StockItem, error)

	// FindByCodes returns the items whose codes are in the list
	FindByCodes(ctx context.Context, codes []string) ([]StockItem, error)

	// Create inserts a new stock item
	Create(ctx context.Context, item *StockItem) error

	// SaveWithLock updates editable fields, checking the previous version
	SaveWithLock(ctx context.Context, item *StockItem) error

	// ApplyReceipt adds the received quantity and overwrites cost, last cost and
	// selling price in one atomic statement. Returns shared.ErrNotFound when no row matches.
	ApplyReceipt(ctx context.Context, id uuid.UUID, receipt Receipt) error
}
