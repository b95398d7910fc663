package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizledger/backend/internal/domain/ledger"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/sales"
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

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type statementFixture struct {
	client   *partner.Client
	clients  *MockClientRepository
	invoices *MockInvoiceRepository
	payments *MockPaymentRepository
	svc      *StatementService
}

func newStatementFixture(t *testing.T) *statementFixture {
	t.Helper()
	client, err := partner.NewClient("Harbour Foods", "", "", "")
	require.NoError(t, err)

	f := &statementFixture{
		client:   client,
		clients:  new(MockClientRepository),
		invoices: new(MockInvoiceRepository),
		payments: new(MockPaymentRepository),
	}
	f.svc = NewStatementService(f.clients, f.invoices, f.payments, nil)
	return f
}

func invoiceOn(clientID uuid.UUID, number string, date time.Time, total string, status sales.InvoiceStatus) sales.Invoice {
	inv := sales.Invoice{
		ClientID:      clientID,
		InvoiceNumber: number,
		Date:          date,
		Status:        status,
		TotalAmount:   dec(total),
	}
	inv.ID = uuid.New()
	return inv
}

func paymentOn(clientID uuid.UUID, ref string, date time.Time, amount string) sales.Payment {
	p := sales.Payment{
		ClientID:          clientID,
		Date:              date,
		CustomerReference: ref,
		Amount:            dec(amount),
		Method:            sales.PaymentMethodEFT,
		AllocationType:    sales.AllocationAccount,
	}
	p.ID = uuid.New()
	return p
}

func TestStatementService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("running balance after invoice and payment", func(t *testing.T) {
		f := newStatementFixture(t)
		id := f.client.ID
		f.clients.On("FindByID", mock.Anything, id).Return(f.client, nil)
		f.invoices.On("FindByClient", mock.Anything, id).Return([]sales.Invoice{
			invoiceOn(id, "INV-100", day(2024, 9, 10), "3680", sales.InvoiceStatusSent),
		}, nil)
		f.payments.On("FindByClient", mock.Anything, id).Return([]sales.Payment{
			paymentOn(id, "EFT-77", day(2024, 9, 15), "1000"),
		}, nil)

		result, err := f.svc.Generate(ctx, id, day(2024, 9, 30))
		require.NoError(t, err)

		st := result.Statement
		assert.Equal(t, f.client, result.Client)
		assert.Equal(t, id, st.ClientID)
		require.Len(t, st.Entries, 2)
		assert.Equal(t, ledger.EntryTypeInvoice, st.Entries[0].Type)
		assert.True(t, st.Entries[0].Balance.Equal(dec("3680")))
		assert.Equal(t, ledger.EntryTypePayment, st.Entries[1].Type)
		assert.True(t, st.Entries[1].Amount.Equal(dec("-1000")))
		assert.True(t, st.Entries[1].Balance.Equal(dec("2680")))
		assert.True(t, st.ClosingBalance.Equal(dec("2680")))
	})

	t.Run("invoices count whatever their status", func(t *testing.T) {
		f := newStatementFixture(t)
		id := f.client.ID
		f.clients.On("FindByID", mock.Anything, id).Return(f.client, nil)
		f.invoices.On("FindByClient", mock.Anything, id).Return([]sales.Invoice{
			invoiceOn(id, "INV-1", day(2024, 9, 1), "100", sales.InvoiceStatusDraft),
			invoiceOn(id, "INV-2", day(2024, 9, 2), "200", sales.InvoiceStatusCancelled),
			invoiceOn(id, "INV-3", day(2024, 9, 3), "300", sales.InvoiceStatusPaid),
		}, nil)
		f.payments.On("FindByClient", mock.Anything, id).Return([]sales.Payment{}, nil)

		result, err := f.svc.Generate(ctx, id, day(2024, 9, 30))
		require.NoError(t, err)
		require.Len(t, result.Statement.Entries, 3)
		assert.Equal(t, "INV-1", result.Statement.Entries[0].Reference)
		assert.Equal(t, "INV-2", result.Statement.Entries[1].Reference)
		assert.Equal(t, "INV-3", result.Statement.Entries[2].Reference)
		assert.True(t, result.Statement.ClosingBalance.Equal(dec("600")))
	})

	t.Run("entries after the cutoff are excluded", func(t *testing.T) {
		f := newStatementFixture(t)
		id := f.client.ID
		f.clients.On("FindByID", mock.Anything, id).Return(f.client, nil)
		f.invoices.On("FindByClient", mock.Anything, id).Return([]sales.Invoice{
			invoiceOn(id, "INV-1", day(2024, 9, 30), "100", sales.InvoiceStatusSent),
			invoiceOn(id, "INV-2", day(2024, 10, 1), "200", sales.InvoiceStatusSent),
		}, nil)
		f.payments.On("FindByClient", mock.Anything, id).Return([]sales.Payment{}, nil)

		result, err := f.svc.Generate(ctx, id, day(2024, 9, 30))
		require.NoError(t, err)
		require.Len(t, result.Statement.Entries, 1)
		assert.True(t, result.Statement.ClosingBalance.Equal(dec("100")))
	})

	t.Run("zero cutoff uses today", func(t *testing.T) {
		f := newStatementFixture(t)
		id := f.client.ID
		f.clients.On("FindByID", mock.Anything, id).Return(f.client, nil)
		f.invoices.On("FindByClient", mock.Anything, id).Return([]sales.Invoice{}, nil)
		f.payments.On("FindByClient", mock.Anything, id).Return([]sales.Payment{}, nil)

		result, err := f.svc.Generate(ctx, id, time.Time{})
		require.NoError(t, err)
		y, m, d := time.Now().UTC().Date()
		assert.Equal(t, day(y, m, d), result.Statement.Cutoff)
		assert.Empty(t, result.Statement.Entries)
		assert.True(t, result.Statement.ClosingBalance.IsZero())
	})

	t.Run("unknown client", func(t *testing.T) {
		f := newStatementFixture(t)
		id := uuid.New()
		f.clients.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Generate(ctx, id, day(2024, 9, 30))
		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.invoices.AssertNotCalled(t, "FindByClient", mock.Anything, mock.Anything)
	})

	t.Run("payment load failure", func(t *testing.T) {
		f := newStatementFixture(t)
		id := f.client.ID
		boom := errors.New("connection reset")
		f.clients.On("FindByID", mock.Anything, id).Return(f.client, nil)
		f.invoices.On("FindByClient", mock.Anything, id).Return([]sales.Invoice{}, nil)
		f.payments.On("FindByClient", mock.Anything, id).Return(nil, boom)

		_, err := f.svc.Generate(ctx, id, day(2024, 9, 30))
		assert.ErrorIs(t, err, boom)
	})
}
