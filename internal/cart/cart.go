// Package cart keeps the in-progress product selection of one shopper.
package cart

import (
	"github.com/perfura/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Cart is an ordered list of items with at most one entry per product. Every
// entry has a quantity of at least one. A Cart is not safe for concurrent use;
// its owner serialises access.
type Cart struct {
	items []models.CartItem
}

func New() *Cart {
	return &Cart{}
}

// Add increments the quantity of an existing entry or appends a new one.
// Non-positive quantities are ignored.
func (c *Cart) Add(product models.Product, quantity int) {
	if quantity <= 0 {
		return
	}
	if i := c.index(product.ID); i >= 0 {
		c.items[i].Quantity += quantity
		return
	}
	c.items = append(c.items, models.CartItem{Product: product, Quantity: quantity})
}

func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// UpdateQuantity sets the quantity of an entry; zero or less removes it.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []models.CartItem {
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

// Subtract removes the given quantities from the matching entries. Entries that
// reach zero are removed; entries the cart no longer holds are skipped.
func (c *Cart) Subtract(items []models.CartItem) {
	for _, item := range items {
		i := c.index(item.Product.ID)
		if i < 0 {
			continue
		}
		c.UpdateQuantity(item.Product.ID, c.items[i].Quantity-item.Quantity)
	}
}

func (c *Cart) index(productID string) int {
	for i, item := range c.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}
