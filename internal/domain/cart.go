package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart domain errors.
var (
	ErrCartNotFound     = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartLineNotFound = &Error{Code: ENOTFOUND, Message: "Cart line not found"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
)

// CartLine is one (product, quantity) entry in a cart.
// A cart holds at most one line per product; repeated adds increment the
// quantity, never duplicate the line.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Cart is the mutable cart aggregate for one owner (an authenticated user or
// an anonymous session). Lines preserve insertion order.
type Cart struct {
	OwnerID   string
	Lines     []CartLine
	UpdatedAt time.Time
}

// Add increments the quantity for productID, appending a new line if none
// exists yet.
func (c *Cart) Add(productID uuid.UUID, qty int) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += qty
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: qty})
}

// SetQuantity replaces the quantity for productID. Zero removes the line.
// Returns false if the product is not in the cart (and qty > 0).
func (c *Cart) SetQuantity(productID uuid.UUID, qty int) bool {
	if qty == 0 {
		return c.Remove(productID)
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = qty
			return true
		}
	}
	return false
}

// Remove deletes the line for productID. Returns false if absent.
func (c *Cart) Remove(productID uuid.UUID) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Wishlist is a set of product IDs saved by one owner.
type Wishlist struct {
	OwnerID   string
	Products  []uuid.UUID
	UpdatedAt time.Time
}

// Add inserts productID if not already present. Returns true if added.
func (w *Wishlist) Add(productID uuid.UUID) bool {
	for _, id := range w.Products {
		if id == productID {
			return false
		}
	}
	w.Products = append(w.Products, productID)
	return true
}

// Remove deletes productID. Returns false if absent.
func (w *Wishlist) Remove(productID uuid.UUID) bool {
	for i, id := range w.Products {
		if id == productID {
			w.Products = append(w.Products[:i], w.Products[i+1:]...)
			return true
		}
	}
	return false
}

// CartSummary aggregates a cart with resolved product details and totals,
// priced against the current catalog (prices are frozen only when an order
// is assembled).
type CartSummary struct {
	Cart          Cart
	Items         []CartItem
	SubtotalCents int64
	ItemCount     int
}

// CartItem is a cart line joined with current catalog details.
type CartItem struct {
	ProductID      uuid.UUID
	Title          string
	ImageURL       string
	Quantity       int
	UnitPriceCents int64
	LineSubtotal   int64
}
