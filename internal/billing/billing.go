// Package billing provides payment processing for checkout.
//
// The storefront runs against the placeholder Simulator; the Provider
// interface is the seam where a real gateway plugs in later.
package billing

import (
	"context"

	"github.com/atelierhq/atelier/internal/domain"
)

// Status is the terminal result of a payment attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Outcome describes the result of one payment attempt. A Failed outcome is a
// definitive decline; transport or provider errors are returned as errors
// instead and leave the order payable.
type Outcome struct {
	Status    Status
	Reference string // provider-side payment reference
	Reason    string // decline reason, empty on success
}

// Provider defines the interface for charging an order.
type Provider interface {
	// AttemptPayment charges the order's total. It returns an Outcome when
	// the attempt reached a decision, or an error when no decision was
	// reached.
	AttemptPayment(ctx context.Context, order *domain.Order) (*Outcome, error)
}
