package purchasing

import (
	"context"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/purchasing"
)

// TransactionScope provides transactional access to the repositories touched by GRV intake.
// All repository operations made inside Execute share one database transaction and
// are committed or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the intake repositories within a transaction.
//
// Aggregate notes:
//   - GrvRepo: append-only. Header and items are written once.
//   - StockRepo: receipts are applied with atomic increments, never read-modify-write.
//   - SupplierRepo: balances are applied with atomic increments.
type TransactionalRepositories interface {
	GrvRepo() purchasing.GrvRepository
	StockRepo() inventory.StockItemRepository
	SupplierRepo() partner.SupplierRepository
}

// NoOpTransactionScope runs the function against plain repositories without a transaction.
// This is useful for testing.
type NoOpTransactionScope struct {
	grvRepo      purchasing.GrvRepository
	stockRepo    inventory.StockItemRepository
	supplierRepo partner.SupplierRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	grvRepo purchasing.GrvRepository,
	stockRepo inventory.StockItemRepository,
	supplierRepo partner.SupplierRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		grvRepo:      grvRepo,
		stockRepo:    stockRepo,
		supplierRepo: supplierRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// GrvRepo returns the GRV repository.
func (s *NoOpTransactionScope) GrvRepo() purchasing.GrvRepository {
	return s.grvRepo
}

// StockRepo returns the stock item repository.
func (s *NoOpTransactionScope) StockRepo() inventory.StockItemRepository {
	return s.stockRepo
}

// SupplierRepo returns the supplier repository.
func (s *NoOpTransactionScope) SupplierRepo() partner.SupplierRepository {
	return s.supplierRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
