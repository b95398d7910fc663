package purchasing

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MissingStock is a code seen on a document that has no stock item yet
type MissingStock struct {
	StockCode   string
	Description string
	CostPrice   decimal.Decimal
}

// StockPlan is the result of resolving document lines against the catalogue.
// Building a plan performs no writes.
type StockPlan struct {
	index   *inventory.StockIndex
	Matched []string
	Missing []MissingStock
}

// Resolve returns the stock item for code, including any provisioned since planning
func (p *StockPlan) Resolve(code string) (*inventory.StockItem, bool) {
	return p.index.Resolve(code)
}

// StockResolver separates stock code resolution from auto-provisioning
type StockResolver struct {
	logger *zap.Logger
}

// NewStockResolver creates a new StockResolver
func NewStockResolver(logger *zap.Logger) *StockResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockResolver{logger: logger}
}

// Plan resolves every line against the index. A code that appears on several
// lines is reported once, with the first line's description and cost.
func (r *StockResolver) Plan(lines []ParsedGrvLine, index *inventory.StockIndex) *StockPlan {
	plan := &StockPlan{index: index}
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, dup := seen[line.StockCode]; dup {
			continue
		}
		seen[line.StockCode] = struct{}{}
		if _, ok := index.Resolve(line.StockCode); ok {
			plan.Matched = append(plan.Matched, line.StockCode)
			continue
		}
		plan.Missing = append(plan.Missing, MissingStock{
			StockCode:   line.StockCode,
			Description: line.Description,
			CostPrice:   line.CostPrice,
		})
	}
	return plan
}

// Provision creates a stock item for each missing code and adds it to the plan.
// A code created concurrently by another intake is reloaded instead.
func (r *StockResolver) Provision(ctx context.Context, repo inventory.StockItemRepository, plan *StockPlan, supplierName string) ([]*inventory.StockItem, error) {
	created := make([]*inventory.StockItem, 0, len(plan.Missing))
	for _, missing := range plan.Missing {
		item, err := inventory.NewProvisionedStockItem(missing.StockCode, missing.Description, missing.CostPrice, supplierName)
		if err != nil {
			return created, fmt.Errorf("provision stock item %q: %w", missing.StockCode, err)
		}
		if err := repo.Create(ctx, item); err != nil {
			if !errors.Is(err, shared.ErrAlreadyExists) {
				return created, fmt.Errorf("provision stock item %q: %w", missing.StockCode, err)
			}
			existing, findErr := repo.FindByCode(ctx, missing.StockCode)
			if findErr != nil {
				return created, fmt.Errorf("reload stock item %q: %w", missing.StockCode, findErr)
			}
			plan.index.Add(existing)
			continue
		}
		r.logger.Info("Auto-provisioned stock item",
			zap.String("stock_code", item.StockCode),
			zap.String("cost_price", item.CostPrice.String()),
			zap.String("selling_price", item.SellingPrice.String()),
		)
		plan.index.Add(item)
		created = append(created, item)
	}
	return created, nil
}
