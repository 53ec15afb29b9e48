package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// NoBatchKey is the key segment used when a record carries no batch number
	NoBatchKey = "NO_BATCH"
	// UnknownProductKey is the key segment used when a record carries no
	// resolvable product identifier. Such records are still merged (into a
	// shared bucket) rather than discarded.
	UnknownProductKey = "UNKNOWN_PRODUCT"
)

// MergedBatchRow is one display-ready row of the stock-by-product view:
// all raw batch records sharing a (product, batch) key folded together.
type MergedBatchRow struct {
	Key         string
	ProductID   string
	ProductName string
	BatchNumber string          // "" when the batches carried no number
	Quantity    decimal.Decimal // sum across merged records
	CostPrice   decimal.Decimal // quantity-weighted average unit cost
	TotalCost   decimal.Decimal // Quantity × CostPrice, set at finalization
	ExpiryDate  *time.Time      // earliest expiry seen, nil when none
	Locations   []string        // distinct locations, first-seen order
	MergedCount int             // raw records folded into this row
}

// RowKey builds the composite merge key for a product/batch pair.
func RowKey(productID, batchNumber string) string {
	if productID == "" {
		productID = UnknownProductKey
	}
	if batchNumber == "" {
		batchNumber = NoBatchKey
	}
	return productID + "::" + batchNumber
}

// LocationDisplay joins the row's locations for rendering.
func (m *MergedBatchRow) LocationDisplay() string {
	return strings.Join(m.Locations, ", ")
}

// HasLocation reports whether the row already recorded the location.
func (m *MergedBatchRow) HasLocation(loc string) bool {
	for _, l := range m.Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// fold merges one more raw record into the row. Quantity accumulates,
// cost becomes the running quantity-weighted average (left untouched when
// the running quantity is zero, so a zero-quantity chain never divides by
// zero), expiry keeps the earliest date seen and locations grow as a set.
func (m *MergedBatchRow) fold(rec RawBatchRecord) {
	qty := rec.Quantity()
	cost := rec.CostPrice()

	newQty := m.Quantity.Add(qty)
	if newQty.IsPositive() {
		weighted := m.CostPrice.Mul(m.Quantity).Add(cost.Mul(qty))
		m.CostPrice = weighted.Div(newQty)
	}
	m.Quantity = newQty

	if exp := rec.ExpiryDate(); exp != nil {
		if m.ExpiryDate == nil || exp.Before(*m.ExpiryDate) {
			m.ExpiryDate = exp
		}
	}

	if loc := rec.Location(); loc != "" && !m.HasLocation(loc) {
		m.Locations = append(m.Locations, loc)
	}

	m.MergedCount++
}

// newMergedRow seeds a row from the first record seen for a key.
func newMergedRow(key string, rec RawBatchRecord) *MergedBatchRow {
	row := &MergedBatchRow{
		Key:         key,
		ProductID:   rec.ProductID(),
		ProductName: rec.ProductName(),
		BatchNumber: rec.BatchNumber(),
		Quantity:    rec.Quantity(),
		CostPrice:   rec.CostPrice(),
		ExpiryDate:  rec.ExpiryDate(),
		MergedCount: 1,
	}
	if loc := rec.Location(); loc != "" {
		row.Locations = []string{loc}
	}
	return row
}
