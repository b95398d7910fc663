package sales

import (
	"context"

	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]sales.Invoice, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]sales.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *sales.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) ReplaceLines(ctx context.Context, invoice *sales.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *sales.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

// MockQuoteRepository is a mock implementation of QuoteRepository
type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Quote), args.Error(1)
}

func (m *MockQuoteRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuoteRepository) Create(ctx context.Context, quote *sales.Quote) error {
	return m.Called(ctx, quote).Error(0)
}

func (m *MockQuoteRepository) ReplaceLines(ctx context.Context, quote *sales.Quote) error {
	return m.Called(ctx, quote).Error(0)
}

func (m *MockQuoteRepository) SaveWithLock(ctx context.Context, quote *sales.Quote) error {
	return m.Called(ctx, quote).Error(0)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]sales.Payment, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]sales.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *sales.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

// MockClientRepository is a mock implementation of ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) Create(ctx context.Context, client *partner.Client) error {
	return m.Called(ctx, client).Error(0)
}
