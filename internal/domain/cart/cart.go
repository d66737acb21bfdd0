// Package cart implements the session-scoped shopping cart: an ordered
// collection of line items with quantity-merge semantics and derived totals.
//
// The in-memory cart is the single source of truth for what a visitor intends
// to purchase. Persistence is a best-effort durability aid handled by the
// Store, never a transactional requirement.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyProductID is returned when an item is added without a product ID.
	ErrEmptyProductID = errors.New("product id must not be empty")
	// ErrInvalidQuantity is returned when an item is added with a quantity below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// ProductSnapshot captures the product fields a line item needs at add time.
// The price is frozen here: later catalog price changes do not retroactively
// change the cart.
type ProductSnapshot struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
	Image    string
}

// LineItem pairs a product snapshot with a quantity of at least 1.
type LineItem struct {
	Product  ProductSnapshot
	Quantity int
}

// Subtotal returns price × quantity for this line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart is an ordered collection of line items. At most one line item exists
// per product ID; insertion order is preserved across quantity updates.
// Cart is not safe for concurrent use; the Store serializes access.
type Cart struct {
	items []LineItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Restore builds a cart from previously persisted line items.
func Restore(items []LineItem) *Cart {
	c := &Cart{items: make([]LineItem, 0, len(items))}
	for _, li := range items {
		if li.Product.ID == "" || li.Quantity < 1 {
			continue
		}
		c.items = append(c.items, li)
	}
	return c
}

// AddItem merges quantity into an existing line for the same product ID, or
// appends a new line at the end of the collection.
func (c *Cart) AddItem(p ProductSnapshot, quantity int) error {
	if p.ID == "" {
		return ErrEmptyProductID
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.items {
		if c.items[i].Product.ID == p.ID {
			c.items[i].Quantity += quantity
			return nil
		}
	}
	c.items = append(c.items, LineItem{Product: p, Quantity: quantity})
	return nil
}

// UpdateQuantity sets the quantity for the given product ID. A quantity of
// zero or below removes the line entirely (decrement-to-zero-removes). An
// unknown product ID is a no-op.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// RemoveItem deletes the line for the given product ID if present.
func (c *Cart) RemoveItem(productID string) {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ItemCount returns the sum of all line item quantities. This is the number
// shown on the cart badge, not the count of distinct products.
func (c *Cart) ItemCount() int {
	total := 0
	for _, li := range c.items {
		total += li.Quantity
	}
	return total
}

// Subtotal returns the sum of price × quantity over all line items, using
// the prices captured at add time.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range c.items {
		sum = sum.Add(li.Subtotal())
	}
	return sum
}
