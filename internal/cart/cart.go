package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one product entry in a cart. MaxQty is the purchasable bound at
// the time the line was added or refreshed.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Image     *string         `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int             `json:"qty"`
	MaxQty    int             `json:"max_qty"`
}

// Cart holds the ordered lines for one owner. Totals are always derived,
// never stored.
type Cart struct {
	Lines []Line `json:"lines"`
}

// TotalItems sums the quantities across all lines.
func (c *Cart) TotalItems() int {
	var total int
	for _, line := range c.Lines {
		total += line.Qty
	}
	return total
}

// Subtotal sums unit price times quantity across all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	return subtotal
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) find(productID uuid.UUID) (int, bool) {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

// merge folds an incoming line into the cart. An existing line keeps its
// position; quantities are summed and clamped to the incoming MaxQty, and
// the incoming snapshot (price, name, bound) wins.
func (c *Cart) merge(incoming Line) {
	if i, ok := c.find(incoming.ProductID); ok {
		merged := incoming
		merged.Qty = clampQty(c.Lines[i].Qty+incoming.Qty, incoming.MaxQty)
		c.Lines[i] = merged
		return
	}
	incoming.Qty = clampQty(incoming.Qty, incoming.MaxQty)
	c.Lines = append(c.Lines, incoming)
}

// setQuantity updates the quantity of an existing line, clamped to its
// stored bound. A quantity of zero or less removes the line. Reports
// whether the product was present.
func (c *Cart) setQuantity(productID uuid.UUID, qty int) bool {
	i, ok := c.find(productID)
	if !ok {
		return false
	}
	if qty <= 0 {
		c.remove(productID)
		return true
	}
	c.Lines[i].Qty = clampQty(qty, c.Lines[i].MaxQty)
	return true
}

// remove drops the line for the given product, reporting whether it existed.
func (c *Cart) remove(productID uuid.UUID) bool {
	i, ok := c.find(productID)
	if !ok {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

func clampQty(qty, maxQty int) int {
	if maxQty >= 1 && qty > maxQty {
		qty = maxQty
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}
