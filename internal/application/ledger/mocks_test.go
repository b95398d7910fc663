package ledger

import (
	"context"

	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

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

// MockInvoiceRepository only answers the reads the statement needs
type MockInvoiceRepository struct {
	mock.Mock
	sales.InvoiceRepository
}

func (m *MockInvoiceRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]sales.Invoice, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Invoice), args.Error(1)
}

// MockPaymentRepository only answers the reads the statement needs
type MockPaymentRepository struct {
	mock.Mock
	sales.PaymentRepository
}

func (m *MockPaymentRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]sales.Payment, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Payment), args.Error(1)
}
