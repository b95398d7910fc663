package persistence

import (
	"context"

	apppurchasing "github.com/bizledger/backend/internal/application/purchasing"
	appsales "github.com/bizledger/backend/internal/application/sales"
	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/purchasing"
	"github.com/bizledger/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// PurchasingTransactionScope implements the purchasing TransactionScope using GORM transactions.
// It provides atomic execution of GRV, stock and supplier writes.
type PurchasingTransactionScope struct {
	db *gorm.DB
}

// NewPurchasingTransactionScope creates a new PurchasingTransactionScope
func NewPurchasingTransactionScope(db *gorm.DB) *PurchasingTransactionScope {
	return &PurchasingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *PurchasingTransactionScope) Execute(ctx context.Context, fn func(repos apppurchasing.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&purchasingRepositories{tx: tx})
	})
}

type purchasingRepositories struct {
	tx *gorm.DB
}

func (r *purchasingRepositories) GrvRepo() purchasing.GrvRepository {
	return NewGormGrvRepository(r.tx)
}

func (r *purchasingRepositories) StockRepo() inventory.StockItemRepository {
	return NewGormStockItemRepository(r.tx)
}

func (r *purchasingRepositories) SupplierRepo() partner.SupplierRepository {
	return NewGormSupplierRepository(r.tx)
}

// SalesTransactionScope implements the sales TransactionScope using GORM transactions
type SalesTransactionScope struct {
	db *gorm.DB
}

// NewSalesTransactionScope creates a new SalesTransactionScope
func NewSalesTransactionScope(db *gorm.DB) *SalesTransactionScope {
	return &SalesTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *SalesTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&salesRepositories{tx: tx})
	})
}

type salesRepositories struct {
	tx *gorm.DB
}

func (r *salesRepositories) InvoiceRepo() sales.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *salesRepositories) QuoteRepo() sales.QuoteRepository {
	return NewGormQuoteRepository(r.tx)
}

func (r *salesRepositories) PaymentRepo() sales.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

var (
	_ apppurchasing.TransactionScope          = (*PurchasingTransactionScope)(nil)
	_ apppurchasing.TransactionalRepositories = (*purchasingRepositories)(nil)
	_ appsales.TransactionScope               = (*SalesTransactionScope)(nil)
	_ appsales.TransactionalRepositories      = (*salesRepositories)(nil)
)
