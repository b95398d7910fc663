package catalog

import "github.com/bizledger/backend/internal/domain/inventory"

// UpdateStockDetailsCommand edits the descriptive fields of a stock item.
// An empty category falls back to the provisioned category.
type UpdateStockDetailsCommand struct {
	Version      int
	Description  string
	Category     string
	SupplierName string
}

// UpdateStockPricingCommand replaces every price field of a stock item
type UpdateStockPricingCommand struct {
	Version int
	Pricing inventory.Pricing
}

// UpdateSupplierCommand replaces a supplier's name and contact fields
type UpdateSupplierCommand struct {
	Version       int
	Name          string
	ContactPerson string
	Email         string
	Phone         string
}
