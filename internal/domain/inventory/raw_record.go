package inventory

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawBatchRecord is a stock batch record as delivered by an upstream
// collaborator. Field names vary between endpoints (quantity vs qty-style
// synonyms, costPrice vs cost, nested product objects), so the record is
// kept untyped and resolved through accessors below. Resolution never
// fails: missing or malformed numeric fields coerce to zero, missing
// dates and strings to nil/empty.
type RawBatchRecord map[string]any

// synonym tables, checked in order; the first present key wins
var (
	productIDKeys   = []string{"productId", "product_id"}
	productNameKeys = []string{"productName", "product_name"}
	batchNumberKeys = []string{"batchNumber", "batch_number", "batch"}
	quantityKeys    = []string{"quantity", "qty"}
	costPriceKeys   = []string{"costPrice", "cost_price", "cost"}
	expiryDateKeys  = []string{"expiryDate", "expiry_date", "expiry"}
	locationKeys    = []string{"location"}
)

// expiry values arrive either as full timestamps or bare dates
var expiryLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ProductID resolves the product identifier, checking direct keys and a
// nested product object. Returns "" when nothing resolvable is present.
func (r RawBatchRecord) ProductID() string {
	if s := r.firstString(productIDKeys); s != "" {
		return s
	}
	if prod, ok := r["product"].(map[string]any); ok {
		return stringify(prod["id"])
	}
	return ""
}

// ProductName resolves the display name, falling back to the nested
// product object. Returns "" when absent.
func (r RawBatchRecord) ProductName() string {
	if s := r.firstString(productNameKeys); s != "" {
		return s
	}
	if prod, ok := r["product"].(map[string]any); ok {
		return stringify(prod["name"])
	}
	return ""
}

// BatchNumber resolves the batch/lot number as a trimmed string.
// Blank values count as absent.
func (r RawBatchRecord) BatchNumber() string {
	for _, k := range batchNumberKeys {
		if v, ok := r[k]; ok {
			if s := strings.TrimSpace(stringify(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// Quantity resolves the batch quantity, defaulting to zero.
func (r RawBatchRecord) Quantity() decimal.Decimal {
	return r.firstDecimal(quantityKeys)
}

// CostPrice resolves the per-unit cost, defaulting to zero.
func (r RawBatchRecord) CostPrice() decimal.Decimal {
	return r.firstDecimal(costPriceKeys)
}

// ExpiryDate resolves the expiry date, nil when absent or unparseable.
func (r RawBatchRecord) ExpiryDate() *time.Time {
	for _, k := range expiryDateKeys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case time.Time:
			return &t
		case *time.Time:
			return t
		}
		s := strings.TrimSpace(stringify(v))
		if s == "" {
			continue
		}
		for _, layout := range expiryLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return &parsed
			}
		}
	}
	return nil
}

// Location resolves the storage location, "" when absent.
func (r RawBatchRecord) Location() string {
	return strings.TrimSpace(r.firstString(locationKeys))
}

// WithProduct returns a copy of the record stamped with the owning
// product's identity. Upstream stock endpoints return batches without
// product context; the caller that fetched per product adds it back,
// overriding whatever the record itself claims.
func (r RawBatchRecord) WithProduct(productID, productName string) RawBatchRecord {
	out := make(RawBatchRecord, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	out["productId"] = productID
	out["productName"] = productName
	return out
}

func (r RawBatchRecord) firstString(keys []string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func (r RawBatchRecord) firstDecimal(keys []string) decimal.Decimal {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return toDecimal(v)
		}
	}
	return decimal.Zero
}

// toDecimal coerces any JSON-ish scalar to a decimal, zero on failure.
// Upstream records carry numbers as float64, json.Number or strings
// depending on which endpoint produced them.
func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(n)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// stringify renders scalar identity fields; numeric IDs become their
// canonical decimal form so 2 and 2.0 produce the same key.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return decimal.NewFromFloat(s).String()
	case int:
		return decimal.NewFromInt(int64(s)).String()
	case int64:
		return decimal.NewFromInt(s).String()
	case bool:
		if s {
			return "true"
		}
		return "false"
	}
	return ""
}
