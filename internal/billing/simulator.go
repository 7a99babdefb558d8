package billing

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/atelierhq/atelier/internal/domain"
)

// Simulator is a placeholder payment provider that approves a configurable
// fraction of attempts. It never talks to a real gateway.
type Simulator struct {
	successRate float64
	randFloat   func() float64
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithRandFloat overrides the random source. Tests inject a deterministic
// function.
func WithRandFloat(f func() float64) SimulatorOption {
	return func(s *Simulator) {
		s.randFloat = f
	}
}

// NewSimulator creates a Simulator that succeeds with the given probability
// in [0, 1].
func NewSimulator(successRate float64, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		successRate: successRate,
		randFloat:   rand.Float64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AttemptPayment simulates charging the order.
func (s *Simulator) AttemptPayment(ctx context.Context, order *domain.Order) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.randFloat() < s.successRate {
		return &Outcome{
			Status:    StatusSucceeded,
			Reference: fmt.Sprintf("sim_%s", order.ID),
		}, nil
	}
	return &Outcome{
		Status: StatusFailed,
		Reason: "card declined",
	}, nil
}

// Always returns a provider that deterministically yields the given status.
// Intended for tests and local development.
func Always(status Status) Provider {
	rate := 0.0
	if status == StatusSucceeded {
		rate = 1.0
	}
	return NewSimulator(rate, WithRandFloat(func() float64 { return 0.5 }))
}
