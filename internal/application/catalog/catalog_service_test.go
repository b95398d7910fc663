package catalog

import (
	"context"
	"testing"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type catalogFixture struct {
	stock     *MockStockItemRepository
	suppliers *MockSupplierRepository
	svc       *CatalogService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		stock:     new(MockStockItemRepository),
		suppliers: new(MockSupplierRepository),
	}
	f.svc = NewCatalogService(f.stock, f.suppliers, nil)
	return f
}

func testStockItem(t *testing.T, code string) *inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(code, "Bolt 10mm", "Hardware", inventory.Pricing{
		CostPrice:    dec("40"),
		SellingPrice: dec("60"),
	}, dec("15"), "Acme Supplies")
	require.NoError(t, err)
	item.QuantityOnHand = 12
	return item
}

func TestCatalogService_UpdateStockDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("saves the edit one version up", func(t *testing.T) {
		f := newCatalogFixture()
		item := testStockItem(t, "BLT-10")
		f.stock.On("FindByCode", mock.Anything, "BLT-10").Return(item, nil)
		f.stock.On("SaveWithLock", mock.Anything, item).Return(nil)

		updated, err := f.svc.UpdateStockDetails(ctx, " BLT-10 ", UpdateStockDetailsCommand{
			Version:      1,
			Description:  " Bolt 10mm zinc ",
			Category:     "Fasteners",
			SupplierName: "Bolt Traders",
		})

		require.NoError(t, err)
		assert.Equal(t, "Bolt 10mm zinc", updated.Description)
		assert.Equal(t, "Fasteners", updated.Category)
		assert.Equal(t, "Bolt Traders", updated.SupplierName)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, 12, updated.QuantityOnHand)
		f.stock.AssertExpectations(t)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		f := newCatalogFixture()
		item := testStockItem(t, "BLT-10")
		item.Version = 3
		f.stock.On("FindByCode", mock.Anything, "BLT-10").Return(item, nil)

		_, err := f.svc.UpdateStockDetails(ctx, "BLT-10", UpdateStockDetailsCommand{Version: 2, Description: "x"})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, "Bolt 10mm", item.Description)
		f.stock.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("lost race at save is a conflict", func(t *testing.T) {
		f := newCatalogFixture()
		item := testStockItem(t, "BLT-10")
		f.stock.On("FindByCode", mock.Anything, "BLT-10").Return(item, nil)
		f.stock.On("SaveWithLock", mock.Anything, item).Return(shared.ErrConcurrencyConflict)

		_, err := f.svc.UpdateStockDetails(ctx, "BLT-10", UpdateStockDetailsCommand{Version: 1, Description: "x"})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("unknown code", func(t *testing.T) {
		f := newCatalogFixture()
		f.stock.On("FindByCode", mock.Anything, "NOPE").Return(nil, shared.ErrNotFound)

		_, err := f.svc.UpdateStockDetails(ctx, "NOPE", UpdateStockDetailsCommand{Version: 1})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCatalogService_UpdateStockPricing(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces every price", func(t *testing.T) {
		f := newCatalogFixture()
		item := testStockItem(t, "BLT-10")
		f.stock.On("FindByCode", mock.Anything, "BLT-10").Return(item, nil)
		f.stock.On("SaveWithLock", mock.Anything, item).Return(nil)

		updated, err := f.svc.UpdateStockPricing(ctx, "BLT-10", UpdateStockPricingCommand{
			Version: 1,
			Pricing: inventory.Pricing{
				CostPrice:    dec("45"),
				SellingPrice: dec("70"),
				PriceA:       dec("68"),
				PriceB:       dec("66"),
				PriceC:       dec("64"),
				PriceD:       dec("62"),
			},
		})

		require.NoError(t, err)
		assert.True(t, dec("45").Equal(updated.CostPrice))
		assert.True(t, dec("70").Equal(updated.SellingPrice))
		assert.True(t, dec("62").Equal(updated.PriceD))
		assert.Equal(t, 2, updated.Version)
	})

	t.Run("negative price is rejected before saving", func(t *testing.T) {
		f := newCatalogFixture()
		item := testStockItem(t, "BLT-10")
		f.stock.On("FindByCode", mock.Anything, "BLT-10").Return(item, nil)

		_, err := f.svc.UpdateStockPricing(ctx, "BLT-10", UpdateStockPricingCommand{
			Version: 1,
			Pricing: inventory.Pricing{CostPrice: dec("-1")},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
		assert.Equal(t, 1, item.Version)
		f.stock.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestCatalogService_UpdateSupplier(t *testing.T) {
	ctx := context.Background()

	newSupplier := func(t *testing.T) *partner.Supplier {
		t.Helper()
		s, err := partner.NewSupplier("Acme Supplies")
		require.NoError(t, err)
		s.CurrentBalance = dec("1000")
		return s
	}

	t.Run("edits contact details and keeps the balance", func(t *testing.T) {
		f := newCatalogFixture()
		supplier := newSupplier(t)
		f.suppliers.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
		f.suppliers.On("SaveWithLock", mock.Anything, supplier).Return(nil)

		updated, err := f.svc.UpdateSupplier(ctx, supplier.ID, UpdateSupplierCommand{
			Version:       1,
			Name:          "Acme Supplies (Pty) Ltd",
			ContactPerson: "Thandi",
			Email:         "orders@acme.test",
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme Supplies (Pty) Ltd", updated.Name)
		assert.Equal(t, "Thandi", updated.ContactPerson)
		assert.True(t, dec("1000").Equal(updated.CurrentBalance))
		assert.Equal(t, 2, updated.Version)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		f := newCatalogFixture()
		supplier := newSupplier(t)
		f.suppliers.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)

		_, err := f.svc.UpdateSupplier(ctx, supplier.ID, UpdateSupplierCommand{Version: 7, Name: "Other"})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		f.suppliers.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		f := newCatalogFixture()
		supplier := newSupplier(t)
		f.suppliers.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)

		_, err := f.svc.UpdateSupplier(ctx, supplier.ID, UpdateSupplierCommand{Version: 1, Name: " "})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_NAME", domainErr.Code)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		f := newCatalogFixture()
		id := uuid.New()
		f.suppliers.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.UpdateSupplier(ctx, id, UpdateSupplierCommand{Version: 1, Name: "X"})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
