package inventory

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawRecord(fields map[string]any) RawBatchRecord {
	return RawBatchRecord(fields)
}

func TestBatchAggregator_Aggregate(t *testing.T) {
	agg := NewBatchAggregator()

	t.Run("merges duplicate keys with weighted average cost", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			rawRecord(map[string]any{"productId": "1", "productName": "Rice", "batchNumber": "B1", "quantity": 10.0, "costPrice": 5.0}),
			rawRecord(map[string]any{"productId": "1", "productName": "Rice", "batchNumber": "B1", "quantity": 5.0, "costPrice": 8.0}),
		})

		require.Len(t, rows, 1)
		row := rows[0]
		assert.Equal(t, "1::B1", row.Key)
		assert.True(t, row.Quantity.Equal(decimal.NewFromInt(15)), "quantity = %s", row.Quantity)
		assert.True(t, row.CostPrice.Equal(decimal.NewFromInt(6)), "costPrice = %s", row.CostPrice)
		assert.Equal(t, "90.00", row.TotalCost.StringFixed(2))
		assert.Equal(t, 2, row.MergedCount)
	})

	t.Run("missing batch number uses sentinel key", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			rawRecord(map[string]any{"productId": "2", "quantity": 3.0, "costPrice": 2.0}),
		})

		require.Len(t, rows, 1)
		assert.Equal(t, "2::NO_BATCH", rows[0].Key)
		assert.Empty(t, rows[0].BatchNumber)
	})

	t.Run("earliest expiry wins regardless of order", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 1.0, "expiryDate": "2025-05-01"}),
			rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 1.0, "expiryDate": "2025-03-10"}),
			rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 1.0, "expiryDate": "2025-04-20"}),
		})

		require.Len(t, rows, 1)
		require.NotNil(t, rows[0].ExpiryDate)
		assert.Equal(t, "2025-03-10", rows[0].ExpiryDate.Format("2006-01-02"))
	})

	t.Run("all expiries absent leaves nil", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 1.0}),
			rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 2.0}),
		})

		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].ExpiryDate)
	})

	t.Run("locations form an insertion-ordered set", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 1.0, "location": "A1"}),
			rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 1.0, "location": "A1"}),
			rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 1.0, "location": "B2"}),
		})

		require.Len(t, rows, 1)
		assert.Equal(t, []string{"A1", "B2"}, rows[0].Locations)
		assert.Equal(t, "A1, B2", rows[0].LocationDisplay())
	})

	t.Run("first seen wins for display fields", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			rawRecord(map[string]any{"productId": "1", "productName": "Rice 5kg", "batchNumber": "B1", "quantity": 1.0}),
			rawRecord(map[string]any{"productId": "1", "productName": "Rice (old label)", "batchNumber": "B1", "quantity": 1.0}),
		})

		require.Len(t, rows, 1)
		assert.Equal(t, "Rice 5kg", rows[0].ProductName)
	})

	t.Run("synonym field names resolve", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			rawRecord(map[string]any{"productId": "1", "batch": " B7 ", "quantity": "4", "cost": "2.50", "expiry": "2026-01-02"}),
		})

		require.Len(t, rows, 1)
		row := rows[0]
		assert.Equal(t, "1::B7", row.Key)
		assert.Equal(t, "B7", row.BatchNumber)
		assert.True(t, row.Quantity.Equal(decimal.NewFromInt(4)))
		assert.Equal(t, "10.00", row.TotalCost.StringFixed(2))
		require.NotNil(t, row.ExpiryDate)
	})

	t.Run("records without product id share the unknown bucket", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			rawRecord(map[string]any{"quantity": 2.0, "costPrice": 1.0}),
			rawRecord(map[string]any{"quantity": 3.0, "costPrice": 1.0}),
		})

		require.Len(t, rows, 1)
		assert.Equal(t, UnknownProductKey+"::"+NoBatchKey, rows[0].Key)
		assert.True(t, rows[0].Quantity.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, 2, rows[0].MergedCount)
	})

	t.Run("nested product object resolves identity", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			rawRecord(map[string]any{
				"product":  map[string]any{"id": 7.0, "name": "Sugar"},
				"quantity": 1.0,
			}),
		})

		require.Len(t, rows, 1)
		assert.Equal(t, "7", rows[0].ProductID)
		assert.Equal(t, "Sugar", rows[0].ProductName)
	})

	t.Run("malformed numeric fields coerce to zero", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			rawRecord(map[string]any{"productId": "1", "quantity": "not-a-number", "costPrice": map[string]any{}}),
		})

		require.Len(t, rows, 1)
		assert.True(t, rows[0].Quantity.IsZero())
		assert.True(t, rows[0].CostPrice.IsZero())
		assert.Equal(t, "0.00", rows[0].TotalCost.StringFixed(2))
	})

	t.Run("zero total quantity keeps last known cost", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 0.0, "costPrice": 4.0}),
			rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 0.0, "costPrice": 9.0}),
		})

		require.Len(t, rows, 1)
		assert.True(t, rows[0].Quantity.IsZero())
		assert.True(t, rows[0].CostPrice.Equal(decimal.NewFromInt(4)), "cost = %s", rows[0].CostPrice)
	})

	t.Run("nil and empty records produce degenerate rows, not panics", func(t *testing.T) {
		rows := agg.Aggregate([]RawBatchRecord{
			nil,
			rawRecord(map[string]any{}),
		})

		require.Len(t, rows, 1)
		assert.Equal(t, UnknownProductKey+"::"+NoBatchKey, rows[0].Key)
		assert.Equal(t, 1, rows[0].MergedCount)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, agg.Aggregate(nil))
		assert.Empty(t, agg.Aggregate([]RawBatchRecord{}))
	})
}

func TestBatchAggregator_QuantityConservation(t *testing.T) {
	agg := NewBatchAggregator()
	rng := rand.New(rand.NewSource(1))

	records := make([]RawBatchRecord, 0, 200)
	inputTotal := decimal.Zero
	for i := 0; i < 200; i++ {
		qty := decimal.NewFromInt(int64(rng.Intn(50)))
		inputTotal = inputTotal.Add(qty)
		records = append(records, rawRecord(map[string]any{
			"productId":   fmt.Sprintf("%d", rng.Intn(10)),
			"batchNumber": fmt.Sprintf("B%d", rng.Intn(4)),
			"quantity":    qty.InexactFloat64(),
			"costPrice":   float64(rng.Intn(100)) / 10,
		}))
	}

	rows := agg.Aggregate(records)

	outputTotal := decimal.Zero
	mergedTotal := 0
	for _, row := range rows {
		outputTotal = outputTotal.Add(row.Quantity)
		mergedTotal += row.MergedCount
	}
	assert.True(t, inputTotal.Equal(outputTotal), "input %s != output %s", inputTotal, outputTotal)
	assert.Equal(t, len(records), mergedTotal)
}

func TestBatchAggregator_WeightedAverageMatchesDirectFormula(t *testing.T) {
	agg := NewBatchAggregator()

	// Σ(qty·cost) / Σqty over a chain of stepwise folds
	entries := []struct{ qty, cost float64 }{
		{3, 1.25}, {7, 2.4}, {2, 10}, {11, 0.99}, {5, 3.33},
	}
	records := make([]RawBatchRecord, 0, len(entries))
	totalQty := decimal.Zero
	totalCost := decimal.Zero
	for _, e := range entries {
		records = append(records, rawRecord(map[string]any{
			"productId": "1", "batchNumber": "B1", "quantity": e.qty, "costPrice": e.cost,
		}))
		q := decimal.NewFromFloat(e.qty)
		totalQty = totalQty.Add(q)
		totalCost = totalCost.Add(q.Mul(decimal.NewFromFloat(e.cost)))
	}

	rows := agg.Aggregate(records)
	require.Len(t, rows, 1)

	expected := totalCost.Div(totalQty)
	diff := rows[0].CostPrice.Sub(expected).Abs()
	assert.True(t, diff.LessThan(decimal.New(1, -10)), "cost %s, expected %s", rows[0].CostPrice, expected)
}

func TestBatchAggregator_Idempotent(t *testing.T) {
	agg := NewBatchAggregator()
	records := []RawBatchRecord{
		rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 10.0, "costPrice": 5.0, "location": "A1"}),
		rawRecord(map[string]any{"productId": "2", "quantity": 3.0, "costPrice": 2.0, "expiryDate": "2025-03-10"}),
		rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 5.0, "costPrice": 8.0, "location": "B2"}),
	}

	first := agg.Aggregate(records)
	second := agg.Aggregate(records)

	assert.Equal(t, first, second)
}

func TestBatchAggregator_Filter(t *testing.T) {
	agg := NewBatchAggregator()
	rows := []MergedBatchRow{
		{Key: "1::B1", ProductName: "Jasmine Rice", BatchNumber: "B1", Locations: []string{"A1"}},
		{Key: "2::B9", ProductName: "Sugar", BatchNumber: "B9", Locations: []string{"SHELF-2"}},
		{Key: "3::NO_BATCH", ProductName: "", BatchNumber: "", Locations: nil},
	}

	t.Run("matches product name case-insensitively", func(t *testing.T) {
		got := agg.Filter(rows, "rice")
		require.Len(t, got, 1)
		assert.Equal(t, "1::B1", got[0].Key)
	})

	t.Run("matches batch number", func(t *testing.T) {
		got := agg.Filter(rows, "b9")
		require.Len(t, got, 1)
		assert.Equal(t, "2::B9", got[0].Key)
	})

	t.Run("matches joined locations", func(t *testing.T) {
		got := agg.Filter(rows, "shelf")
		require.Len(t, got, 1)
		assert.Equal(t, "2::B9", got[0].Key)
	})

	t.Run("blank query returns all rows", func(t *testing.T) {
		assert.Equal(t, rows, agg.Filter(rows, ""))
		assert.Equal(t, rows, agg.Filter(rows, "   "))
	})

	t.Run("row with no searchable fields never matches", func(t *testing.T) {
		got := agg.Filter(rows, "anything")
		assert.Empty(t, got)
	})
}

func TestBatchAggregator_Paginate(t *testing.T) {
	agg := NewBatchAggregator()

	makeRows := func(n int) []MergedBatchRow {
		rows := make([]MergedBatchRow, n)
		for i := range rows {
			rows[i] = MergedBatchRow{Key: fmt.Sprintf("%d::B", i)}
		}
		return rows
	}

	t.Run("out-of-range page clamps to last page", func(t *testing.T) {
		page := agg.Paginate(makeRows(21), 10, 7)

		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Rows, 7)
		assert.Equal(t, "14::B", page.Rows[0].Key)
		assert.Equal(t, "20::B", page.Rows[6].Key)
	})

	t.Run("negative page clamps to first page", func(t *testing.T) {
		page := agg.Paginate(makeRows(10), -3, 7)

		assert.Equal(t, 0, page.Page)
		require.Len(t, page.Rows, 7)
		assert.Equal(t, "0::B", page.Rows[0].Key)
	})

	t.Run("last page holds the remainder", func(t *testing.T) {
		page := agg.Paginate(makeRows(10), 1, 7)

		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 2, page.TotalPages)
		assert.Len(t, page.Rows, 3)
	})

	t.Run("empty rows yield a single empty page", func(t *testing.T) {
		page := agg.Paginate(nil, 5, 7)

		assert.Empty(t, page.Rows)
		assert.Equal(t, 0, page.Page)
		assert.Equal(t, 1, page.TotalPages)
		assert.Equal(t, 0, page.Total)
	})

	t.Run("non-positive page size falls back to default", func(t *testing.T) {
		page := agg.Paginate(makeRows(15), 0, 0)

		assert.Equal(t, DefaultPageSize, page.PageSize)
		assert.Len(t, page.Rows, DefaultPageSize)
	})
}

func TestRowKey(t *testing.T) {
	tests := []struct {
		name        string
		productID   string
		batchNumber string
		expected    string
	}{
		{"both present", "12", "B1", "12::B1"},
		{"missing batch", "12", "", "12::NO_BATCH"},
		{"missing product", "", "B1", "UNKNOWN_PRODUCT::B1"},
		{"missing both", "", "", "UNKNOWN_PRODUCT::NO_BATCH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RowKey(tt.productID, tt.batchNumber))
		})
	}
}

func TestMergedBatchRow_ExpiryNeverRegresses(t *testing.T) {
	agg := NewBatchAggregator()
	early := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	rows := agg.Aggregate([]RawBatchRecord{
		rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 1.0, "expiryDate": early}),
		rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 1.0, "expiryDate": "2025-09-01"}),
		rawRecord(map[string]any{"productId": "1", "batchNumber": "B1", "quantity": 1.0}),
	})

	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].ExpiryDate)
	assert.True(t, rows[0].ExpiryDate.Equal(early))
}
