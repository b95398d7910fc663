package sales

import (
	"time"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the client paid
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "CASH"
	PaymentMethodEFT   PaymentMethod = "EFT"
	PaymentMethodCard  PaymentMethod = "CARD"
	PaymentMethodOther PaymentMethod = "OTHER"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodEFT, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// AllocationType says whether a payment settles a specific invoice or the account
type AllocationType string

const (
	AllocationInvoice AllocationType = "INVOICE"
	AllocationAccount AllocationType = "ACCOUNT"
)

// Payment is an immutable receipt from a client
type Payment struct {
	shared.BaseEntity
	ClientID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID         *uuid.UUID      `gorm:"type:uuid;index"`
	Date              time.Time       `gorm:"type:date;not null;index"`
	CustomerReference string          `gorm:"type:varchar(100)"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method            PaymentMethod   `gorm:"type:varchar(20);not null"`
	AllocationType    AllocationType  `gorm:"type:varchar(20);not null"`
	Notes             string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a validated payment. Invoice allocation requires an invoice.
func NewPayment(clientID uuid.UUID, date time.Time, reference string, amount decimal.Decimal, method PaymentMethod, allocation AllocationType, invoiceID *uuid.UUID) (*Payment, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Payment date is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+string(method))
	}
	switch allocation {
	case AllocationInvoice:
		if invoiceID == nil || *invoiceID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_ALLOCATION", "Invoice allocation requires an invoice ID")
		}
	case AllocationAccount:
		invoiceID = nil
	default:
		return nil, shared.NewDomainError("INVALID_ALLOCATION", "Unknown allocation type: "+string(allocation))
	}

	return &Payment{
		BaseEntity:        shared.NewBaseEntity(),
		ClientID:          clientID,
		InvoiceID:         invoiceID,
		Date:              date,
		CustomerReference: reference,
		Amount:            amount,
		Method:            method,
		AllocationType:    allocation,
	}, nil
}
