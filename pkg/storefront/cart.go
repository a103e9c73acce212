package storefront

import (
	"sync"

	"github.com/shopspring/decimal"
)

// CartLine is one product in the cart. Quantity is always at least 1.
type CartLine struct {
	Product  Product
	Quantity int
}

// Subtotal returns price × quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a client-held shopping cart keyed by product id. It is safe for
// concurrent use.
type Cart struct {
	mu    sync.Mutex
	lines map[int]*CartLine
	order []int
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{lines: make(map[int]*CartLine)}
}

// Add puts one unit of product in the cart.
func (c *Cart) Add(product Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if line, ok := c.lines[product.ID]; ok {
		line.Quantity++
		return
	}
	c.lines[product.ID] = &CartLine{Product: product, Quantity: 1}
	c.order = append(c.order, product.ID)
}

// ChangeQuantity adds delta to the quantity of productID. A line whose
// quantity drops to zero or below is removed. Unknown ids are ignored.
func (c *Cart) ChangeQuantity(productID, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[productID]
	if !ok {
		return
	}
	line.Quantity += delta
	if line.Quantity <= 0 {
		c.removeLocked(productID)
	}
}

// Remove drops productID from the cart.
func (c *Cart) Remove(productID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID)
}

func (c *Cart) removeLocked(productID int) {
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Total returns Σ price × quantity.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Count returns Σ quantity.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}

// Lines returns a copy of the cart lines in the order they were first added.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]CartLine, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = make(map[int]*CartLine)
	c.order = nil
}
