package persistence

import (
	"context"
	"time"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockItemRepository implements StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// FindByID finds a stock item by its ID
func (r *GormStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// FindByCode finds a stock item by its exact stock code
func (r *GormStockItemRepository) FindByCode(ctx context.Context, code string) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).Where("stock_code = ?", code).First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// FindByCodes returns the items whose codes are in the list
func (r *GormStockItemRepository) FindByCodes(ctx context.Context, codes []string) ([]inventory.StockItem, error) {
	if len(codes) == 0 {
		return []inventory.StockItem{}, nil
	}
	var items []inventory.StockItem
	if err := r.db.WithContext(ctx).Where("stock_code IN ?", codes).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new stock item. A taken stock code returns shared.ErrAlreadyExists.
func (r *GormStockItemRepository) Create(ctx context.Context, item *inventory.StockItem) error {
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

// SaveWithLock updates editable fields, checking the previous version.
// Quantity on hand is never written here; receipts go through ApplyReceipt.
func (r *GormStockItemRepository) SaveWithLock(ctx context.Context, item *inventory.StockItem) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.StockItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]any{
			"description":   item.Description,
			"category":      item.Category,
			"cost_price":    item.CostPrice,
			"selling_price": item.SellingPrice,
			"price_a":       item.PriceA,
			"price_b":       item.PriceB,
			"price_c":       item.PriceC,
			"price_d":       item.PriceD,
			"vat_rate":      item.VATRate,
			"supplier_name": item.SupplierName,
			"version":       item.Version,
			"updated_at":    item.UpdatedAt,
		})
	return checkVersioned(result, &inventory.StockItem{}, item.ID)
}

// ApplyReceipt adds the received quantity and overwrites the cost fields in one
// statement, so concurrent receipts for the same item never lose an increment.
func (r *GormStockItemRepository) ApplyReceipt(ctx context.Context, id uuid.UUID, receipt inventory.Receipt) error {
	if err := receipt.Validate(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&inventory.StockItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quantity_on_hand": gorm.Expr("quantity_on_hand + ?", receipt.Quantity),
			"cost_price":       receipt.CostPrice,
			"last_cost":        receipt.CostPrice,
			"selling_price":    receipt.SellingPrice,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ inventory.StockItemRepository = (*GormStockItemRepository)(nil)
