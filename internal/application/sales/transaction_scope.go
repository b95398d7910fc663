package sales

import (
	"context"

	"github.com/bizledger/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to sales repositories.
// Quote conversion and invoice-allocated payments touch two aggregates and run inside one.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to sales repositories within a transaction.
type TransactionalRepositories interface {
	InvoiceRepo() sales.InvoiceRepository
	QuoteRepo() sales.QuoteRepository
	PaymentRepo() sales.PaymentRepository
}

// NoOpTransactionScope runs the function against plain repositories without a transaction.
// This is useful for testing.
type NoOpTransactionScope struct {
	invoiceRepo sales.InvoiceRepository
	quoteRepo   sales.QuoteRepository
	paymentRepo sales.PaymentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo sales.InvoiceRepository,
	quoteRepo sales.QuoteRepository,
	paymentRepo sales.PaymentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo: invoiceRepo,
		quoteRepo:   quoteRepo,
		paymentRepo: paymentRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() sales.InvoiceRepository {
	return s.invoiceRepo
}

// QuoteRepo returns the quote repository.
func (s *NoOpTransactionScope) QuoteRepo() sales.QuoteRepository {
	return s.quoteRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() sales.PaymentRepository {
	return s.paymentRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
