// Package events publishes order lifecycle events to interested consumers
// (email jobs, analytics). Publishing is best-effort: failures are logged by
// callers and never fail the originating request.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Subjects for order lifecycle events.
const (
	SubjectOrderCreated     = "order.created"
	SubjectPaymentSucceeded = "payment.succeeded"
	SubjectPaymentFailed    = "payment.failed"
)

// Event is one order lifecycle notification.
type Event struct {
	Subject     string    `json:"subject"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	TotalCents  int64     `json:"total_cents,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher defines the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Recorder is an in-process Publisher that records published events.
// Used in tests and as the default when no broker is configured.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish records the event.
func (r *Recorder) Publish(ctx context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
