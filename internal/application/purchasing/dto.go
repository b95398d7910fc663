package purchasing

import (
	"time"

	"github.com/bizledger/backend/internal/domain/purchasing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiveGrvCommand is a manually entered or already resolved GRV
type ReceiveGrvCommand struct {
	SupplierID uuid.UUID
	Reference  string
	Date       time.Time
	OrderNo    *string
	Note       string
	Items      []ReceiveGrvItem
}

// ReceiveGrvItem is one line of a ReceiveGrvCommand. When StockItemID is nil
// the line is linked by StockCode if the code exists. A nil SellingPrice keeps
// the linked item's current selling price.
type ReceiveGrvItem struct {
	StockItemID  *uuid.UUID
	StockCode    string
	Description  string
	Quantity     int
	CostPrice    decimal.Decimal
	SellingPrice *decimal.Decimal
}

func (c ReceiveGrvCommand) header() purchasing.Header {
	return purchasing.Header{
		Reference:  c.Reference,
		Date:       c.Date,
		SupplierID: c.SupplierID,
		OrderNo:    c.OrderNo,
		Note:       c.Note,
	}
}

func (c ReceiveGrvCommand) itemInputs() []purchasing.ItemInput {
	inputs := make([]purchasing.ItemInput, 0, len(c.Items))
	for _, item := range c.Items {
		input := purchasing.ItemInput{
			StockItemID: item.StockItemID,
			StockCode:   item.StockCode,
			Description: item.Description,
			Quantity:    item.Quantity,
			CostPrice:   item.CostPrice,
		}
		if item.SellingPrice != nil {
			input.SellingPrice = *item.SellingPrice
		}
		inputs = append(inputs, input)
	}
	return inputs
}

// FailureStage names the intake step that failed for an IntakeFailure
type FailureStage string

const (
	StageStockUpdate     FailureStage = "STOCK_UPDATE"
	StageSupplierBalance FailureStage = "SUPPLIER_BALANCE"
)

// IntakeFailure is a side effect that could not be applied after the GRV was recorded
type IntakeFailure struct {
	Stage       FailureStage
	LineNo      int
	StockItemID *uuid.UUID
	Err         error
}

// SkippedItem is a recorded line that has no linked stock item
type SkippedItem struct {
	LineNo    int
	StockCode string
}

// IntakeResult reports the outcome of a successful intake
type IntakeResult struct {
	Grv         *purchasing.Grv
	Policy      IntakePolicy
	Provisioned []uuid.UUID
	Skipped     []SkippedItem
	Failures    []IntakeFailure
}

// Degraded reports whether any stock or supplier update was not applied
func (r *IntakeResult) Degraded() bool {
	return len(r.Failures) > 0
}
