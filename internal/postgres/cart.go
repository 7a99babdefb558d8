package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/atelierhq/atelier/internal/domain"
)

// GetCart returns the owner's cart, or an empty cart if none exists.
func (s *Store) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart := &domain.Cart{OwnerID: ownerID}

	var lines []byte
	err := s.pool.QueryRow(ctx,
		`SELECT lines, updated_at FROM carts WHERE owner_id = $1`,
		ownerID,
	).Scan(&lines, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cart, nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := json.Unmarshal(lines, &cart.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart lines: %w", err)
	}
	return cart, nil
}

// SaveCart persists the cart, replacing any previous state.
func (s *Store) SaveCart(ctx context.Context, cart *domain.Cart) error {
	lines, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart lines: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO carts (owner_id, lines, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (owner_id) DO UPDATE SET
			lines = EXCLUDED.lines,
			updated_at = now()`,
		cart.OwnerID, lines,
	)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// DeleteCart removes the owner's cart. Deleting a missing cart is not an
// error.
func (s *Store) DeleteCart(ctx context.Context, ownerID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM carts WHERE owner_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// GetWishlist returns the owner's wishlist, or an empty one.
func (s *Store) GetWishlist(ctx context.Context, ownerID string) (*domain.Wishlist, error) {
	w := &domain.Wishlist{OwnerID: ownerID}

	var products []byte
	err := s.pool.QueryRow(ctx,
		`SELECT products, updated_at FROM wishlists WHERE owner_id = $1`,
		ownerID,
	).Scan(&products, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return w, nil
		}
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	if err := json.Unmarshal(products, &w.Products); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist: %w", err)
	}
	return w, nil
}

// SaveWishlist persists the wishlist.
func (s *Store) SaveWishlist(ctx context.Context, w *domain.Wishlist) error {
	products, err := json.Marshal(w.Products)
	if err != nil {
		return fmt.Errorf("failed to encode wishlist: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO wishlists (owner_id, products, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (owner_id) DO UPDATE SET
			products = EXCLUDED.products,
			updated_at = now()`,
		w.OwnerID, products,
	)
	if err != nil {
		return fmt.Errorf("failed to save wishlist: %w", err)
	}
	return nil
}
