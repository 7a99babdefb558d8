package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
)

// OrderService provides order history and payment follow-up for the account
// surface. Orders are only visible to their owner.
type OrderService interface {
	GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)

	// CompletePayment settles a pending order as paid, for orders whose
	// initial payment attempt never reached a decision.
	CompletePayment(ctx context.Context, userID string, orderID uuid.UUID) (*domain.Order, error)

	GetCustomerStats(ctx context.Context, userID string) (*domain.CustomerStats, error)
}

type orderService struct {
	store  store.OrderStore
	logger *slog.Logger
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(st store.OrderStore, logger *slog.Logger) (OrderService, error) {
	if st == nil {
		return nil, fmt.Errorf("order store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &orderService{store: st, logger: logger}, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	// Hide other users' orders rather than admitting they exist.
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.store.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) CompletePayment(ctx context.Context, userID string, orderID uuid.UUID) (*domain.Order, error) {
	if _, err := s.GetOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}

	order, err := s.store.TransitionPayment(ctx, orderID, domain.PaymentPaid, "payment completed")
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment completed", "order_id", orderID, "order_number", order.Number)
	return order, nil
}

func (s *orderService) GetCustomerStats(ctx context.Context, userID string) (*domain.CustomerStats, error) {
	stats, err := s.store.GetCustomerStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer stats: %w", err)
	}
	return stats, nil
}
