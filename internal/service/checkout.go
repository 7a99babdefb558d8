package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/billing"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/events"
	"github.com/atelierhq/atelier/internal/shipping"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/telemetry"
)

// paymentTimeout bounds the detached payment attempt after checkout returns.
const paymentTimeout = 30 * time.Second

// CheckoutService converts a cart into an order.
//
// The durable work (order number, order record, customer stats) happens in
// one transaction. Everything after the commit is best-effort: a failed cart
// clear, event publish or payment attempt leaves the order in place with
// paymentStatus pending, never a failed checkout.
type CheckoutService interface {
	Checkout(ctx context.Context, userID string, req CheckoutRequest) (*domain.Order, error)
}

type checkoutService struct {
	store     store.Store
	shipping  shipping.Provider
	billing   billing.Provider
	publisher events.Publisher
	metrics   *telemetry.Metrics
	logger    *slog.Logger

	now   func() time.Time
	newID func() uuid.UUID

	// syncPayments runs the payment attempt before Checkout returns.
	// Tests use it to observe the settled payment status.
	syncPayments bool
}

// CheckoutOption configures a CheckoutService.
type CheckoutOption func(*checkoutService)

// WithSyncPayments makes the payment attempt run inline instead of in a
// background goroutine.
func WithSyncPayments() CheckoutOption {
	return func(s *checkoutService) { s.syncPayments = true }
}

// WithCheckoutClock overrides the time source.
func WithCheckoutClock(now func() time.Time) CheckoutOption {
	return func(s *checkoutService) { s.now = now }
}

// WithOrderIDFunc overrides order ID generation.
func WithOrderIDFunc(newID func() uuid.UUID) CheckoutOption {
	return func(s *checkoutService) { s.newID = newID }
}

// NewCheckoutService creates a new CheckoutService instance.
func NewCheckoutService(
	st store.Store,
	ship shipping.Provider,
	bill billing.Provider,
	publisher events.Publisher,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
	opts ...CheckoutOption,
) (CheckoutService, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if ship == nil {
		return nil, fmt.Errorf("shipping provider is required")
	}
	if bill == nil {
		return nil, fmt.Errorf("billing provider is required")
	}
	if publisher == nil {
		publisher = events.NewRecorder()
	}
	if metrics == nil {
		return nil, fmt.Errorf("metrics are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &checkoutService{
		store:     st,
		shipping:  ship,
		billing:   bill,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *checkoutService) Checkout(ctx context.Context, userID string, req CheckoutRequest) (*domain.Order, error) {
	if err := req.Validate(); err != nil {
		s.metrics.CheckoutFailed.WithLabelValues("validation").Inc()
		return nil, err
	}

	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		s.metrics.CheckoutFailed.WithLabelValues("internal").Inc()
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.Empty() {
		s.metrics.CheckoutFailed.WithLabelValues("validation").Inc()
		return nil, ErrEmptyCart
	}

	method, err := s.shipping.Lookup(ctx, req.ShippingMethod)
	if err != nil {
		if errors.Is(err, shipping.ErrMethodNotFound) {
			s.metrics.CheckoutFailed.WithLabelValues("validation").Inc()
			return nil, ErrUnknownShippingMethod
		}
		s.metrics.CheckoutFailed.WithLabelValues("internal").Inc()
		return nil, fmt.Errorf("failed to resolve shipping method: %w", err)
	}

	// Resolve every cart line before opening the transaction; the snapshot
	// prices are frozen from here.
	items := make(map[uuid.UUID]*domain.CatalogItem, len(cart.Lines))
	for _, line := range cart.Lines {
		item, err := s.store.GetItem(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.metrics.CheckoutFailed.WithLabelValues("validation").Inc()
				return nil, domain.NotFound("checkout", "product", line.ProductID.String())
			}
			s.metrics.CheckoutFailed.WithLabelValues("internal").Inc()
			return nil, fmt.Errorf("failed to resolve cart line: %w", err)
		}
		items[line.ProductID] = item
	}

	orderID := s.newID()
	var order *domain.Order

	// The callback may run more than once on write conflicts; assembly is
	// pure and the writes all go through tx, so retries are safe.
	err = s.store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		number, err := tx.NextOrderNumber(ctx)
		if err != nil {
			return err
		}

		order, err = AssembleOrder(AssemblyInput{
			OrderID: orderID,
			Number:  number,
			UserID:  userID,
			Cart:    cart,
			Items:   items,
			Method:  *method,
			Request: req,
			Now:     s.now(),
		})
		if err != nil {
			return err
		}

		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		return tx.AddCustomerStats(ctx, userID, 1, order.Pricing.TotalCents)
	})
	if err != nil {
		if errors.Is(err, store.ErrRetriesExhausted) {
			s.metrics.CheckoutFailed.WithLabelValues("conflict").Inc()
			return nil, ErrCheckoutFailed
		}
		var de *domain.Error
		if errors.As(err, &de) {
			s.metrics.CheckoutFailed.WithLabelValues("validation").Inc()
			return nil, err
		}
		s.metrics.CheckoutFailed.WithLabelValues("internal").Inc()
		return nil, fmt.Errorf("checkout transaction failed: %w", err)
	}

	s.metrics.OrdersCreated.Inc()
	s.metrics.OrderValue.Observe(float64(order.Pricing.TotalCents))
	s.logger.Info("order created",
		"order_id", order.ID, "order_number", order.Number,
		"user_id", userID, "total_cents", order.Pricing.TotalCents)

	// Post-commit: all best-effort from here on.
	if err := s.store.DeleteCart(ctx, userID); err != nil {
		s.logger.Error("failed to clear cart after checkout",
			"user_id", userID, "order_id", order.ID, "error", err)
	}

	s.publish(ctx, events.Event{
		Subject:     events.SubjectOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      userID,
		TotalCents:  order.Pricing.TotalCents,
		OccurredAt:  s.now(),
	})

	if s.syncPayments {
		s.attemptPayment(ctx, order)
	} else {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), paymentTimeout)
			defer cancel()
			s.attemptPayment(ctx, order)
		}()
	}

	return order, nil
}

// attemptPayment runs the placeholder payment and settles the order's payment
// status. A provider error leaves the order pending and payable later; only a
// definitive decline marks it failed.
func (s *checkoutService) attemptPayment(ctx context.Context, order *domain.Order) {
	s.metrics.PaymentAttempts.Inc()

	outcome, err := s.billing.AttemptPayment(ctx, order)
	if err != nil {
		s.logger.Error("payment attempt did not complete, order stays pending",
			"order_id", order.ID, "error", err)
		return
	}

	switch outcome.Status {
	case billing.StatusSucceeded:
		if _, err := s.store.TransitionPayment(ctx, order.ID, domain.PaymentPaid, outcome.Reference); err != nil {
			s.logger.Error("failed to record successful payment",
				"order_id", order.ID, "error", err)
			return
		}
		s.metrics.PaymentSucceeded.Inc()
		s.publish(ctx, events.Event{
			Subject:     events.SubjectPaymentSucceeded,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			UserID:      order.UserID,
			TotalCents:  order.Pricing.TotalCents,
			OccurredAt:  s.now(),
		})

	case billing.StatusFailed:
		if _, err := s.store.TransitionPayment(ctx, order.ID, domain.PaymentFailed, outcome.Reason); err != nil {
			s.logger.Error("failed to record declined payment",
				"order_id", order.ID, "error", err)
			return
		}
		s.metrics.PaymentFailed.Inc()
		s.publish(ctx, events.Event{
			Subject:     events.SubjectPaymentFailed,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			UserID:      order.UserID,
			OccurredAt:  s.now(),
		})
	}
}

func (s *checkoutService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event",
			"subject", event.Subject, "order_id", event.OrderID, "error", err)
	}
}
