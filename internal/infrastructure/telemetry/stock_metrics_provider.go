package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormStockMetricsProvider implements StockMetricsProvider using GORM.
// It queries the stock_items and suppliers tables directly for aggregates.
type GormStockMetricsProvider struct {
	db *gorm.DB
}

// NewGormStockMetricsProvider creates a new GormStockMetricsProvider.
func NewGormStockMetricsProvider(db *gorm.DB) *GormStockMetricsProvider {
	return &GormStockMetricsProvider{db: db}
}

// CountStockItems returns the number of stock items.
func (p *GormStockMetricsProvider) CountStockItems(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Table("stock_items").Count(&count).Error
	return count, err
}

// CountOutOfStock returns the number of stock items with nothing on hand.
func (p *GormStockMetricsProvider) CountOutOfStock(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("stock_items").
		Where("quantity_on_hand <= 0").
		Count(&count).Error
	return count, err
}

// TotalSupplierBalance returns the sum of current supplier balances.
func (p *GormStockMetricsProvider) TotalSupplierBalance(ctx context.Context) (float64, error) {
	var total float64
	err := p.db.WithContext(ctx).
		Table("suppliers").
		Select("COALESCE(SUM(current_balance), 0)").
		Scan(&total).Error
	return total, err
}
