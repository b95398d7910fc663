// Package purchasing models goods received from suppliers.
package purchasing

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GrvItem is one received line of a goods received voucher
type GrvItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	GrvID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo       int             `gorm:"not null"`
	StockItemID  *uuid.UUID      `gorm:"type:uuid;index"` // nil when the line is not linked to stock
	StockCode    string          `gorm:"type:varchar(50)"`
	Description  string          `gorm:"type:varchar(500)"`
	Quantity     int             `gorm:"not null"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GrvItem) TableName() string {
	return "grv_items"
}

// Value returns quantity * cost price
func (i GrvItem) Value() decimal.Decimal {
	return i.CostPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Grv is a goods received voucher. It is created once with all its items and never edited.
type Grv struct {
	shared.BaseEntity
	Reference         string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_grv_supplier_reference,priority:2"`
	Date              time.Time `gorm:"type:date;not null"`
	SupplierID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_grv_supplier_reference,priority:1"`
	OrderNo           *string   `gorm:"type:varchar(100)"`
	Note              string    `gorm:"type:text"`
	SourceDocumentKey string    `gorm:"type:varchar(500)"`
	Items             []GrvItem `gorm:"foreignKey:GrvID;references:ID"`
}

// TableName returns the table name for GORM
func (Grv) TableName() string {
	return "grvs"
}

// ItemInput describes a line to record on a new GRV
type ItemInput struct {
	StockItemID  *uuid.UUID
	StockCode    string
	Description  string
	Quantity     int
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
}

// Header holds the GRV header fields
type Header struct {
	Reference  string
	Date       time.Time
	SupplierID uuid.UUID
	OrderNo    *string
	Note       string
}

// ErrEmptyGrv is returned when a GRV has no items
var ErrEmptyGrv = shared.NewDomainError("EMPTY_GRV", "GRV must have at least one item")

// NewGrv validates the header and items and builds the voucher
func NewGrv(h Header, items []ItemInput) (*Grv, error) {
	if len(items) == 0 {
		return nil, ErrEmptyGrv
	}
	ref := strings.TrimSpace(h.Reference)
	if ref == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "GRV reference is required")
	}
	if len(ref) > 100 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "GRV reference cannot exceed 100 characters")
	}
	if h.Date.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "GRV date is required")
	}
	if h.SupplierID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "GRV supplier is required")
	}

	grv := &Grv{
		BaseEntity: shared.NewBaseEntity(),
		Reference:  ref,
		Date:       h.Date,
		SupplierID: h.SupplierID,
		OrderNo:    h.OrderNo,
		Note:       h.Note,
		Items:      make([]GrvItem, 0, len(items)),
	}
	for n, in := range items {
		if in.Quantity <= 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("item %d: quantity must be positive", n+1))
		}
		if in.CostPrice.IsNegative() || in.SellingPrice.IsNegative() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("item %d: prices cannot be negative", n+1))
		}
		grv.Items = append(grv.Items, GrvItem{
			ID:           uuid.New(),
			GrvID:        grv.ID,
			LineNo:       n + 1,
			StockItemID:  in.StockItemID,
			StockCode:    strings.TrimSpace(in.StockCode),
			Description:  in.Description,
			Quantity:     in.Quantity,
			CostPrice:    in.CostPrice,
			SellingPrice: in.SellingPrice,
			CreatedAt:    grv.CreatedAt,
		})
	}
	return grv, nil
}

// TotalValue returns the sum of quantity * cost price over all items
func (g *Grv) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, item := range g.Items {
		total = total.Add(item.Value())
	}
	return total
}

// IdempotencyKey identifies this voucher across repeated submissions
func (g *Grv) IdempotencyKey() string {
	return IdempotencyKey(g.SupplierID, g.Reference)
}

// IdempotencyKey builds the duplicate-intake key for a supplier reference
func IdempotencyKey(supplierID uuid.UUID, reference string) string {
	return "grv:" + supplierID.String() + ":" + strings.ToLower(strings.TrimSpace(reference))
}
