package partner

import (
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
)

// Client is a customer who receives invoices and quotes
type Client struct {
	shared.BaseAggregateRoot
	Name    string `gorm:"type:varchar(200);not null;index"`
	Email   string `gorm:"type:varchar(200)"`
	Phone   string `gorm:"type:varchar(50)"`
	Address string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a client
func NewClient(name, email, phone, address string) (*Client, error) {
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}
	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Email:             email,
		Phone:             phone,
		Address:           address,
	}, nil
}
