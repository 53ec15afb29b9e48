package sales

import (
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the sales tax applied at checkout when the
// configuration does not override it.
var DefaultTaxRate = decimal.NewFromFloat(0.10)

// CartLine is one product line in a point-of-sale cart.
type CartLine struct {
	ProductID string
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// LineTotal returns Quantity × UnitPrice.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Cart is an in-memory point-of-sale cart. Adding a product that is
// already in the cart increments its line instead of appending a
// duplicate; line order is insertion order. The cart is not safe for
// concurrent use; one cashier terminal owns one cart.
type Cart struct {
	lines []CartLine
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Lines returns a copy of the cart's lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Add puts one unit of the product into the cart. An existing line for
// the same product gains one unit and takes the latest price.
func (c *Cart) Add(productID, name string, unitPrice decimal.Decimal) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = c.lines[i].Quantity.Add(decimal.NewFromInt(1))
			c.lines[i].UnitPrice = unitPrice
			return
		}
	}
	c.lines = append(c.lines, CartLine{
		ProductID: productID,
		Name:      name,
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: unitPrice,
	})
}

// SetQuantity sets a line's quantity. Zero or negative removes the line;
// unknown product ids are ignored.
func (c *Cart) SetQuantity(productID string, qty decimal.Decimal) {
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		if !qty.IsPositive() {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = qty
		}
		return
	}
}

// Remove deletes the line for the product, if present.
func (c *Cart) Remove(productID string) {
	c.SetQuantity(productID, decimal.Zero)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Subtotal returns the sum of all line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// Tax returns the tax amount for the given rate, rounded to 2 decimals.
func (c *Cart) Tax(rate decimal.Decimal) decimal.Decimal {
	return c.Subtotal().Mul(rate).Round(2)
}

// Total returns subtotal plus tax at the given rate.
func (c *Cart) Total(rate decimal.Decimal) decimal.Decimal {
	return c.Subtotal().Add(c.Tax(rate))
}

// Snapshot captures the current lines so a failed checkout can restore them.
func (c *Cart) Snapshot() []CartLine {
	return c.Lines()
}

// Restore replaces the cart's lines with a previously taken snapshot.
func (c *Cart) Restore(snapshot []CartLine) {
	c.lines = make([]CartLine, len(snapshot))
	copy(c.lines, snapshot)
}
