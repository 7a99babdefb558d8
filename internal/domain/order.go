package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order domain errors.
var (
	ErrOrderNotFound = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrEmptyCart     = &Error{Code: EINVALID, Message: "Cart is empty"}
)

// PaymentStatus represents the payment lifecycle state of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// OrderStatus represents the fulfillment stage of an order, independent from
// its payment status.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// paymentTransitions is the set of legal payment-status transitions.
// Once paid, only refunded is reachable; failed and refunded are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentPaid:    {PaymentRefunded},
}

// CanTransitionPayment reports whether moving from one payment status to
// another is legal.
func CanTransitionPayment(from, to PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusEntry is one append-only status history record.
type StatusEntry struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
	Note   string    `json:"note,omitempty"`
}

// OrderLine is an immutable snapshot of one purchased product. Title, image
// and unit price are frozen at purchase time and never re-read from the live
// catalog.
type OrderLine struct {
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int       `json:"quantity"`
	Title          string    `json:"title"`
	ImageURL       string    `json:"image_url,omitempty"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

// LineTotal returns quantity times the frozen unit price.
func (l OrderLine) LineTotal() int64 {
	return int64(l.Quantity) * l.UnitPriceCents
}

// PricingBreakdown holds an order's cost components in minor currency units.
// Total = Subtotal + Shipping + Tax - Discount.
type PricingBreakdown struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// Order is a persisted, immutable snapshot of a completed checkout. Only its
// status fields and history ever change after creation; the number, lines
// and pricing never do.
type Order struct {
	ID     uuid.UUID
	Number string // display number, e.g. "#1006"; never reassigned or reused
	UserID string

	Lines   []OrderLine
	Pricing PricingBreakdown

	ShippingAddress Address
	BillingAddress  Address
	ShippingMethod  string
	PaymentMethod   string

	PaymentStatus PaymentStatus
	Status        OrderStatus
	History       []StatusEntry // append-only

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FormatOrderNumber renders a counter value as a display order number.
func FormatOrderNumber(n int64) string {
	return fmt.Sprintf("#%d", n)
}

// AppendHistory records a status change. History is never mutated in place.
func (o *Order) AppendHistory(status, note string, now time.Time) {
	o.History = append(o.History, StatusEntry{Status: status, At: now, Note: note})
	o.UpdatedAt = now
}

// TransitionPayment applies a payment-status transition, appending history.
// A transition to paid also confirms a pending order. Illegal transitions
// return an ECONFLICT error; no transition is ever silently dropped.
func (o *Order) TransitionPayment(to PaymentStatus, note string, now time.Time) error {
	if !CanTransitionPayment(o.PaymentStatus, to) {
		return Errorf(ECONFLICT, "order.transition",
			"cannot transition payment from %s to %s", o.PaymentStatus, to)
	}

	o.PaymentStatus = to
	o.AppendHistory("payment:"+string(to), note, now)

	if to == PaymentPaid && o.Status == OrderPending {
		o.Status = OrderConfirmed
		o.AppendHistory(string(OrderConfirmed), "payment received", now)
	}

	return nil
}

// CustomerStats is the denormalized order history summary kept on a user
// profile. Stats reflect orders placed, not orders paid.
type CustomerStats struct {
	UserID          string
	TotalOrders     int64
	TotalSpentCents int64
	UpdatedAt       time.Time
}

// Identity is the minimal view of the current user supplied by the external
// identity provider at checkout time.
type Identity struct {
	UserID string
	Name   string
	Email  string
}
