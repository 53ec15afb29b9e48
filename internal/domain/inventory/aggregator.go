package inventory

import (
	"strings"
)

// DefaultPageSize is the stock view's fixed page size.
const DefaultPageSize = 7

// BatchAggregator merges raw stock batch records into one row per
// (product, batch) key and provides keyword filtering and pagination over
// the merged rows. It holds no state across calls: aggregating the same
// input twice yields the same output.
type BatchAggregator struct{}

// NewBatchAggregator creates a new BatchAggregator.
func NewBatchAggregator() *BatchAggregator {
	return &BatchAggregator{}
}

// Aggregate folds the raw records into merged rows. Duplicate keys
// accumulate quantity and a quantity-weighted average cost, keep the
// earliest expiry and the union of locations. Records without a
// resolvable product identifier share a single unknown-product bucket.
// Rows come back in first-seen key order; TotalCost is computed once per
// row after all records are folded, rounded to two decimal places.
func (a *BatchAggregator) Aggregate(records []RawBatchRecord) []MergedBatchRow {
	byKey := make(map[string]*MergedBatchRow, len(records))
	order := make([]string, 0, len(records))

	for _, rec := range records {
		if rec == nil {
			continue
		}
		key := RowKey(rec.ProductID(), rec.BatchNumber())
		if row, ok := byKey[key]; ok {
			row.fold(rec)
			continue
		}
		byKey[key] = newMergedRow(key, rec)
		order = append(order, key)
	}

	rows := make([]MergedBatchRow, 0, len(order))
	for _, key := range order {
		row := byKey[key]
		row.TotalCost = row.Quantity.Mul(row.CostPrice).Round(2)
		rows = append(rows, *row)
	}
	return rows
}

// Filter returns the rows whose product name, batch number or joined
// locations contain the query, case-insensitively. A blank query returns
// the input unchanged.
func (a *BatchAggregator) Filter(rows []MergedBatchRow, query string) []MergedBatchRow {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return rows
	}
	out := make([]MergedBatchRow, 0, len(rows))
	for _, row := range rows {
		if containsFold(row.ProductName, q) ||
			containsFold(row.BatchNumber, q) ||
			containsFold(row.LocationDisplay(), q) {
			out = append(out, row)
		}
	}
	return out
}

func containsFold(s, lowerQuery string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerQuery)
}

// StockPage is one page of merged rows plus the pagination envelope.
type StockPage struct {
	Rows       []MergedBatchRow
	Page       int // clamped zero-based page index
	PageSize   int
	Total      int // total rows across all pages
	TotalPages int
}

// Paginate slices rows into the requested zero-based page. The page index
// is clamped into range and a non-positive page size falls back to
// DefaultPageSize, so out-of-range input returns the nearest valid page
// rather than an error. An empty row set yields one empty page.
func (a *BatchAggregator) Paginate(rows []MergedBatchRow, pageIndex, pageSize int) StockPage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(rows)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	page := pageIndex
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}

	start := page * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return StockPage{
		Rows:       rows[start:end],
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
