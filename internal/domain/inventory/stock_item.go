package inventory

import (
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// ProvisionedCategory is assigned to stock items created from unmatched GRV lines
	ProvisionedCategory = "Uncategorized"
)

var (
	// ProvisionedMarkup is the cost multiplier used for auto-provisioned selling prices
	ProvisionedMarkup = decimal.RequireFromString("1.5")
	// ProvisionedVATRate is the VAT percentage assigned to auto-provisioned items
	ProvisionedVATRate = decimal.NewFromInt(15)
)

// StockItem is the aggregate root for a stocked product, identified by its stock code
type StockItem struct {
	shared.BaseAggregateRoot
	StockCode      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description    string          `gorm:"type:varchar(500)"`
	Category       string          `gorm:"type:varchar(100);not null;default:'Uncategorized'"`
	CostPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastCost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PriceA         decimal.Decimal `gorm:"column:price_a;type:decimal(18,4);not null;default:0"`
	PriceB         decimal.Decimal `gorm:"column:price_b;type:decimal(18,4);not null;default:0"`
	PriceC         decimal.Decimal `gorm:"column:price_c;type:decimal(18,4);not null;default:0"`
	PriceD         decimal.Decimal `gorm:"column:price_d;type:decimal(18,4);not null;default:0"`
	QuantityOnHand int             `gorm:"not null;default:0"`
	VATRate        decimal.Decimal `gorm:"column:vat_rate;type:decimal(5,2);not null;default:15"`
	SupplierName   string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// Pricing groups the editable price fields of a stock item
type Pricing struct {
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	PriceA       decimal.Decimal
	PriceB       decimal.Decimal
	PriceC       decimal.Decimal
	PriceD       decimal.Decimal
}

// Validate rejects negative prices
func (p Pricing) Validate() error {
	for _, v := range []decimal.Decimal{p.CostPrice, p.SellingPrice, p.PriceA, p.PriceB, p.PriceC, p.PriceD} {
		if v.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
		}
	}
	return nil
}

// NewStockItem creates a stock item with zero quantity on hand
func NewStockItem(stockCode, description, category string, pricing Pricing, vatRate decimal.Decimal, supplierName string) (*StockItem, error) {
	code := strings.TrimSpace(stockCode)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_STOCK_CODE", "Stock code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_STOCK_CODE", "Stock code cannot exceed 50 characters")
	}
	if err := pricing.Validate(); err != nil {
		return nil, err
	}
	if vatRate.IsNegative() || vatRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_VAT_RATE", "VAT rate must be between 0 and 100")
	}
	if category == "" {
		category = ProvisionedCategory
	}

	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StockCode:         code,
		Description:       description,
		Category:          category,
		CostPrice:         pricing.CostPrice,
		LastCost:          pricing.CostPrice,
		SellingPrice:      pricing.SellingPrice,
		PriceA:            pricing.PriceA,
		PriceB:            pricing.PriceB,
		PriceC:            pricing.PriceC,
		PriceD:            pricing.PriceD,
		QuantityOnHand:    0,
		VATRate:           vatRate,
		SupplierName:      supplierName,
	}, nil
}

// NewProvisionedStockItem creates a stock item for a code seen on a GRV but missing
// from the catalogue. Selling price and every price tier are cost x 1.5, VAT is 15
// and the quantity starts at zero so the receipt itself supplies the stock.
func NewProvisionedStockItem(stockCode, description string, costPrice decimal.Decimal, supplierName string) (*StockItem, error) {
	selling := costPrice.Mul(ProvisionedMarkup)
	return NewStockItem(stockCode, description, ProvisionedCategory, Pricing{
		CostPrice:    costPrice,
		SellingPrice: selling,
		PriceA:       selling,
		PriceB:       selling,
		PriceC:       selling,
		PriceD:       selling,
	}, ProvisionedVATRate, supplierName)
}

// UpdatePricing replaces the price fields from a direct edit
func (s *StockItem) UpdatePricing(p Pricing) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.CostPrice = p.CostPrice
	s.SellingPrice = p.SellingPrice
	s.PriceA = p.PriceA
	s.PriceB = p.PriceB
	s.PriceC = p.PriceC
	s.PriceD = p.PriceD
	s.MarkModified()
	return nil
}

// UpdateDetails replaces the descriptive fields from a direct edit
func (s *StockItem) UpdateDetails(description, category, supplierName string) {
	if category == "" {
		category = ProvisionedCategory
	}
	s.Description = description
	s.Category = category
	s.SupplierName = supplierName
	s.MarkModified()
}

// Receipt is the stock effect of one received GRV line
type Receipt struct {
	Quantity     int
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
}

// Validate checks the receipt values
func (r Receipt) Validate() error {
	if r.Quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	if r.CostPrice.IsNegative() || r.SellingPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Received prices cannot be negative")
	}
	return nil
}
