package sales

import (
	"context"
	"testing"

	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sentInvoice(t *testing.T, clientID uuid.UUID) *sales.Invoice {
	t.Helper()
	invoice, err := sales.NewInvoice(clientID, "INV-500", day(2024, 9, 10), true, []sales.LineItem{
		{Description: "Labour", Quantity: 10, UnitPrice: dec("150.00"), VATRate: dec("15")},
		{Description: "Pump", Quantity: 2, UnitPrice: dec("850.00"), VATRate: dec("15")},
	})
	require.NoError(t, err)
	require.NoError(t, invoice.Send())
	return invoice
}

func TestPaymentService_RecordPayment_PartiallyPaysInvoice(t *testing.T) {
	f := newSalesFixture(t)
	invoice := sentInvoice(t, f.client.ID)

	f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	f.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)
	f.paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*sales.Payment")).Return(nil)

	payment, err := f.payments.RecordPayment(context.Background(), RecordPaymentCommand{
		ClientID:          f.client.ID,
		InvoiceID:         &invoice.ID,
		Date:              day(2024, 9, 15),
		CustomerReference: "EFT 8812",
		Amount:            dec("1000.00"),
		Method:            sales.PaymentMethodEFT,
		AllocationType:    sales.AllocationInvoice,
	})

	require.NoError(t, err)
	assert.Equal(t, invoice.ID, *payment.InvoiceID)
	assert.Equal(t, sales.InvoiceStatusPartiallyPaid, invoice.Status)
	assert.True(t, invoice.Outstanding().Equal(dec("2680")))
	f.invoiceRepo.AssertExpectations(t)
	f.paymentRepo.AssertExpectations(t)
}

func TestPaymentService_RecordPayment_SettlesInvoice(t *testing.T) {
	f := newSalesFixture(t)
	invoice := sentInvoice(t, f.client.ID)

	f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	f.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)
	f.paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.payments.RecordPayment(context.Background(), RecordPaymentCommand{
		ClientID:       f.client.ID,
		InvoiceID:      &invoice.ID,
		Date:           day(2024, 9, 15),
		Amount:         dec("3680.00"),
		Method:         sales.PaymentMethodCard,
		AllocationType: sales.AllocationInvoice,
	})

	require.NoError(t, err)
	assert.Equal(t, sales.InvoiceStatusPaid, invoice.Status)
}

func TestPaymentService_RecordPayment_AccountAllocationLeavesInvoicesAlone(t *testing.T) {
	f := newSalesFixture(t)
	invoiceID := uuid.New()
	f.paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	payment, err := f.payments.RecordPayment(context.Background(), RecordPaymentCommand{
		ClientID:       f.client.ID,
		InvoiceID:      &invoiceID,
		Date:           day(2024, 9, 15),
		Amount:         dec("50"),
		Method:         sales.PaymentMethodCash,
		AllocationType: sales.AllocationAccount,
	})

	require.NoError(t, err)
	assert.Nil(t, payment.InvoiceID)
	f.invoiceRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_Rejections(t *testing.T) {
	t.Run("overpayment", func(t *testing.T) {
		f := newSalesFixture(t)
		invoice := sentInvoice(t, f.client.ID)
		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

		_, err := f.payments.RecordPayment(context.Background(), RecordPaymentCommand{
			ClientID: f.client.ID, InvoiceID: &invoice.ID, Date: day(2024, 9, 15),
			Amount: dec("4000"), Method: sales.PaymentMethodEFT, AllocationType: sales.AllocationInvoice,
		})

		assert.Equal(t, "OVERPAYMENT", codeOf(err))
		f.paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invoice of another client", func(t *testing.T) {
		f := newSalesFixture(t)
		invoice := sentInvoice(t, uuid.New())
		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

		_, err := f.payments.RecordPayment(context.Background(), RecordPaymentCommand{
			ClientID: f.client.ID, InvoiceID: &invoice.ID, Date: day(2024, 9, 15),
			Amount: dec("10"), Method: sales.PaymentMethodEFT, AllocationType: sales.AllocationInvoice,
		})

		assert.Equal(t, "INVALID_ALLOCATION", codeOf(err))
	})

	t.Run("non-positive amount", func(t *testing.T) {
		f := newSalesFixture(t)

		_, err := f.payments.RecordPayment(context.Background(), RecordPaymentCommand{
			ClientID: f.client.ID, Date: day(2024, 9, 15),
			Amount: dec("0"), Method: sales.PaymentMethodEFT, AllocationType: sales.AllocationAccount,
		})

		assert.Equal(t, "INVALID_AMOUNT", codeOf(err))
	})

	t.Run("missing invoice", func(t *testing.T) {
		f := newSalesFixture(t)
		missing := uuid.New()
		f.invoiceRepo.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

		_, err := f.payments.RecordPayment(context.Background(), RecordPaymentCommand{
			ClientID: f.client.ID, InvoiceID: &missing, Date: day(2024, 9, 15),
			Amount: dec("10"), Method: sales.PaymentMethodEFT, AllocationType: sales.AllocationInvoice,
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
