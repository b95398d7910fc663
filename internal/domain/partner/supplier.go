package partner

import (
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Supplier is the aggregate root for a vendor we owe money to
type Supplier struct {
	shared.BaseAggregateRoot
	Name           string          `gorm:"type:varchar(200);not null;index"`
	ContactPerson  string          `gorm:"type:varchar(100)"`
	Email          string          `gorm:"type:varchar(200)"`
	Phone          string          `gorm:"type:varchar(50)"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Amount owed to the supplier
	AgeingBalance  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Stored, maintained elsewhere
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a supplier with zero balances
func NewSupplier(name string) (*Supplier, error) {
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		CurrentBalance:    decimal.Zero,
		AgeingBalance:     decimal.Zero,
	}, nil
}

// UpdateDetails replaces the name and contact information from a direct edit.
// Balances are never edited this way.
func (s *Supplier) UpdateDetails(name, contactPerson, email, phone string) error {
	if err := validatePartnerName(name); err != nil {
		return err
	}
	s.Name = strings.TrimSpace(name)
	s.ContactPerson = strings.TrimSpace(contactPerson)
	s.Email = strings.TrimSpace(email)
	s.Phone = strings.TrimSpace(phone)
	s.MarkModified()
	return nil
}

func validatePartnerName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(trimmed) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}
