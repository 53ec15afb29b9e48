package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStock returns the merged rows whose quantity is at or below the
// threshold. A non-positive threshold matches only empty rows.
func LowStock(rows []MergedBatchRow, threshold decimal.Decimal) []MergedBatchRow {
	out := make([]MergedBatchRow, 0)
	for _, row := range rows {
		if row.Quantity.LessThanOrEqual(threshold) {
			out = append(out, row)
		}
	}
	return out
}

// ExpiringWithin returns the merged rows whose earliest expiry falls
// before now+window. Rows without an expiry never match.
func ExpiringWithin(rows []MergedBatchRow, now time.Time, window time.Duration) []MergedBatchRow {
	cutoff := now.Add(window)
	out := make([]MergedBatchRow, 0)
	for _, row := range rows {
		if row.ExpiryDate != nil && row.ExpiryDate.Before(cutoff) {
			out = append(out, row)
		}
	}
	return out
}

// StockValuation summarizes a merged row set for dashboard display.
type StockValuation struct {
	TotalQuantity decimal.Decimal
	TotalValue    decimal.Decimal // sum of row TotalCost
	ProductCount  int             // distinct product ids (unknown bucket counts once)
	BatchCount    int             // merged rows
}

// Valuation computes the stock valuation summary over merged rows.
func Valuation(rows []MergedBatchRow) StockValuation {
	v := StockValuation{
		TotalQuantity: decimal.Zero,
		TotalValue:    decimal.Zero,
		BatchCount:    len(rows),
	}
	seen := make(map[string]struct{})
	for _, row := range rows {
		v.TotalQuantity = v.TotalQuantity.Add(row.Quantity)
		v.TotalValue = v.TotalValue.Add(row.TotalCost)
		id := row.ProductID
		if id == "" {
			id = UnknownProductKey
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			v.ProductCount++
		}
	}
	return v
}
