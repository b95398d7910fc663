// Package catalog serves direct edits of stock items and suppliers.
package catalog

import (
	"context"
	"strings"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService reads and edits master data. Every edit names the version it
// was made against; a stale version fails with shared.ErrConcurrencyConflict.
// Quantities and balances are never written here.
type CatalogService struct {
	stockRepo    inventory.StockItemRepository
	supplierRepo partner.SupplierRepository
	logger       *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	stockRepo inventory.StockItemRepository,
	supplierRepo partner.SupplierRepository,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		stockRepo:    stockRepo,
		supplierRepo: supplierRepo,
		logger:       logger,
	}
}

// GetStockItem returns the stock item with the exact code
func (s *CatalogService) GetStockItem(ctx context.Context, code string) (*inventory.StockItem, error) {
	return s.stockRepo.FindByCode(ctx, strings.TrimSpace(code))
}

// UpdateStockDetails replaces the descriptive fields of a stock item
func (s *CatalogService) UpdateStockDetails(ctx context.Context, code string, cmd UpdateStockDetailsCommand) (*inventory.StockItem, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_item", "update_details")
	defer span.End()

	item, err := s.loadStockItem(ctx, code, cmd.Version)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	item.UpdateDetails(strings.TrimSpace(cmd.Description), strings.TrimSpace(cmd.Category), strings.TrimSpace(cmd.SupplierName))
	if err := s.stockRepo.SaveWithLock(ctx, item); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Stock item updated",
		zap.String("stock_item_id", item.ID.String()),
		zap.String("stock_code", item.StockCode),
		zap.Int("version", item.Version),
	)
	return item, nil
}

// UpdateStockPricing replaces the cost, selling price and price tiers of a stock item
func (s *CatalogService) UpdateStockPricing(ctx context.Context, code string, cmd UpdateStockPricingCommand) (*inventory.StockItem, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_item", "update_pricing")
	defer span.End()

	item, err := s.loadStockItem(ctx, code, cmd.Version)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := item.UpdatePricing(cmd.Pricing); err != nil {
		return nil, err
	}
	if err := s.stockRepo.SaveWithLock(ctx, item); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Stock item repriced",
		zap.String("stock_item_id", item.ID.String()),
		zap.String("stock_code", item.StockCode),
		zap.String("cost_price", item.CostPrice.String()),
		zap.String("selling_price", item.SellingPrice.String()),
	)
	return item, nil
}

// GetSupplier returns a supplier by id
func (s *CatalogService) GetSupplier(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	return s.supplierRepo.FindByID(ctx, id)
}

// UpdateSupplier replaces a supplier's name and contact information
func (s *CatalogService) UpdateSupplier(ctx context.Context, id uuid.UUID, cmd UpdateSupplierCommand) (*partner.Supplier, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier", "update")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrSupplierID, id.String())

	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if supplier.Version != cmd.Version {
		return nil, shared.ErrConcurrencyConflict
	}
	if err := supplier.UpdateDetails(cmd.Name, cmd.ContactPerson, cmd.Email, cmd.Phone); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.SaveWithLock(ctx, supplier); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Supplier updated",
		zap.String("supplier_id", supplier.ID.String()),
		zap.Int("version", supplier.Version),
	)
	return supplier, nil
}

func (s *CatalogService) loadStockItem(ctx context.Context, code string, version int) (*inventory.StockItem, error) {
	item, err := s.stockRepo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if item.Version != version {
		return nil, shared.ErrConcurrencyConflict
	}
	return item, nil
}
