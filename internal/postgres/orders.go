package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
)

// pgTx exposes the checkout write handles over one pgx transaction.
type pgTx struct {
	tx   pgx.Tx
	base int64
}

// NextOrderNumber increments the shared counter and returns the new value.
// The upsert bootstraps the counter row at base+1 on first use; concurrent
// bootstraps collide on the primary key and resolve first-writer-wins, with
// the loser retried by the serializable transaction layer.
func (t *pgTx) NextOrderNumber(ctx context.Context) (int64, error) {
	var value int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO order_counter (id, value) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET value = order_counter.value + 1
		RETURNING value`,
		t.base+1,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to advance order counter: %w", err)
	}
	return value, nil
}

// InsertOrder writes a new order record.
func (t *pgTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode order lines: %w", err)
	}
	shipping, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}
	billing, err := json.Marshal(order.BillingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode billing address: %w", err)
	}
	history, err := json.Marshal(order.History)
	if err != nil {
		return fmt.Errorf("failed to encode status history: %w", err)
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, lines,
			subtotal_cents, shipping_cents, discount_cents, tax_cents, total_cents,
			shipping_address, billing_address, shipping_method, payment_method,
			payment_status, status, status_history, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		order.ID, order.Number, order.UserID, lines,
		order.Pricing.SubtotalCents, order.Pricing.ShippingCents,
		order.Pricing.DiscountCents, order.Pricing.TaxCents, order.Pricing.TotalCents,
		shipping, billing, order.ShippingMethod, order.PaymentMethod,
		order.PaymentStatus, order.Status, history, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// AddCustomerStats increments the user's denormalized order stats.
func (t *pgTx) AddCustomerStats(ctx context.Context, userID string, orders int64, spentCents int64) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO customer_stats (user_id, total_orders, total_spent_cents, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE SET
			total_orders = customer_stats.total_orders + EXCLUDED.total_orders,
			total_spent_cents = customer_stats.total_spent_cents + EXCLUDED.total_spent_cents,
			updated_at = now()`,
		userID, orders, spentCents,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer stats: %w", err)
	}
	return nil
}

const orderColumns = `
	id, order_number, user_id, lines,
	subtotal_cents, shipping_cents, discount_cents, tax_cents, total_cents,
	shipping_address, billing_address, shipping_method, payment_method,
	payment_status, status, status_history, created_at, updated_at`

// GetOrder returns an order by ID.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1`, id)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// ListOrdersByUser returns a user's orders, newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT`+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, order_number DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// TransitionPayment applies a guarded payment-status transition. The order
// row is locked, the transition validated in the domain, and the result
// written back in one short transaction.
func (s *Store) TransitionPayment(ctx context.Context, orderID uuid.UUID, to domain.PaymentStatus, note string) (*domain.Order, error) {
	var result *domain.Order

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)

		order, err := scanOrder(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		if err := order.TransitionPayment(to, note, time.Now()); err != nil {
			return err
		}

		history, err := json.Marshal(order.History)
		if err != nil {
			return fmt.Errorf("failed to encode status history: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE orders SET
				payment_status = $2, status = $3, status_history = $4, updated_at = now()
			WHERE id = $1`,
			orderID, order.PaymentStatus, order.Status, history,
		)
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetCustomerStats returns the user's stats, zero-valued if absent.
func (s *Store) GetCustomerStats(ctx context.Context, userID string) (*domain.CustomerStats, error) {
	stats := &domain.CustomerStats{UserID: userID}

	err := s.pool.QueryRow(ctx,
		`SELECT total_orders, total_spent_cents, updated_at FROM customer_stats WHERE user_id = $1`,
		userID,
	).Scan(&stats.TotalOrders, &stats.TotalSpentCents, &stats.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stats, nil
		}
		return nil, fmt.Errorf("failed to get customer stats: %w", err)
	}
	return stats, nil
}

// CurrentOrderNumber returns the last issued counter value, or the base if
// the counter has not bootstrapped yet.
func (s *Store) CurrentOrderNumber(ctx context.Context) (int64, error) {
	var value int64
	err := s.pool.QueryRow(ctx, `SELECT value FROM order_counter WHERE id = 1`).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.base, nil
		}
		return 0, fmt.Errorf("failed to read order counter: %w", err)
	}
	return value, nil
}

// scanOrder reads one order row.
func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order                             domain.Order
		lines, shipping, billing, history []byte
	)

	err := row.Scan(
		&order.ID, &order.Number, &order.UserID, &lines,
		&order.Pricing.SubtotalCents, &order.Pricing.ShippingCents,
		&order.Pricing.DiscountCents, &order.Pricing.TaxCents, &order.Pricing.TotalCents,
		&shipping, &billing, &order.ShippingMethod, &order.PaymentMethod,
		&order.PaymentStatus, &order.Status, &history, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(lines, &order.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode order lines: %w", err)
	}
	if err := json.Unmarshal(shipping, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode shipping address: %w", err)
	}
	if err := json.Unmarshal(billing, &order.BillingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode billing address: %w", err)
	}
	if err := json.Unmarshal(history, &order.History); err != nil {
		return nil, fmt.Errorf("failed to decode status history: %w", err)
	}

	return &order, nil
}
