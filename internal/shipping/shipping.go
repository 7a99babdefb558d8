// Package shipping provides shipping method lookup for checkout.
package shipping

import (
	"context"
	"errors"
)

// ErrMethodNotFound is returned when a shipping method code is unknown.
var ErrMethodNotFound = errors.New("shipping method not found")

// Method is a single shipping option offered at checkout.
type Method struct {
	Code      string `json:"code"`
	Label     string `json:"label"`
	CostCents int64  `json:"cost_cents"`
	DaysMin   int    `json:"days_min"`
	DaysMax   int    `json:"days_max"`
}

// Provider defines the interface for shipping cost lookup.
// Implementations can integrate real carriers later; checkout only needs a
// fixed cost per selected method.
type Provider interface {
	// Methods returns the available shipping options.
	Methods(ctx context.Context) ([]Method, error)

	// Lookup resolves a method by its code, ErrMethodNotFound if unknown.
	Lookup(ctx context.Context, code string) (*Method, error)
}
