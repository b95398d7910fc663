package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	clientID := uuid.New()
	date := time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC)

	t.Run("account payment", func(t *testing.T) {
		invoiceID := uuid.New()
		payment, err := NewPayment(clientID, date, "EFT-123", dec("1000"), PaymentMethodEFT, AllocationAccount, &invoiceID)
		require.NoError(t, err)
		assert.Nil(t, payment.InvoiceID)
		assert.Equal(t, "1000", payment.Amount.String())
	})

	t.Run("invoice payment keeps invoice", func(t *testing.T) {
		invoiceID := uuid.New()
		payment, err := NewPayment(clientID, date, "", dec("5"), PaymentMethodCash, AllocationInvoice, &invoiceID)
		require.NoError(t, err)
		require.NotNil(t, payment.InvoiceID)
		assert.Equal(t, invoiceID, *payment.InvoiceID)
	})

	t.Run("invoice allocation requires invoice", func(t *testing.T) {
		_, err := NewPayment(clientID, date, "", dec("5"), PaymentMethodCash, AllocationInvoice, nil)
		require.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewPayment(clientID, date, "", dec("0"), PaymentMethodCash, AllocationAccount, nil)
		require.Error(t, err)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := NewPayment(clientID, date, "", dec("1"), PaymentMethod("CHEQUE"), AllocationAccount, nil)
		require.Error(t, err)
	})

	t.Run("rejects unknown allocation", func(t *testing.T) {
		_, err := NewPayment(clientID, date, "", dec("1"), PaymentMethodCard, AllocationType("SPLIT"), nil)
		require.Error(t, err)
	})
}
