package inventory

import "strings"

// StockIndex resolves stock codes against a snapshot of the catalogue.
// Resolution is pure; it never creates items.
type StockIndex struct {
	byCode map[string]*StockItem
}

// NewStockIndex builds an index keyed by stock code
func NewStockIndex(items []StockItem) *StockIndex {
	idx := &StockIndex{byCode: make(map[string]*StockItem, len(items))}
	for i := range items {
		idx.byCode[items[i].StockCode] = &items[i]
	}
	return idx
}

// Resolve returns the item whose stock code equals code exactly.
// Surrounding whitespace is ignored; case is not.
func (x *StockIndex) Resolve(code string) (*StockItem, bool) {
	item, ok := x.byCode[strings.TrimSpace(code)]
	return item, ok
}

// Add inserts or replaces an item in the index
func (x *StockIndex) Add(item *StockItem) {
	x.byCode[item.StockCode] = item
}
