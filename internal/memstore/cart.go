package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
)

// GetCart returns the owner's cart, or an empty cart if none exists.
func (s *Store) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[ownerID]
	if !ok {
		return &domain.Cart{OwnerID: ownerID}, nil
	}
	cp := cloneCart(cart)
	return &cp, nil
}

// SaveCart persists the cart, replacing any previous state.
func (s *Store) SaveCart(ctx context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneCart(*cart)
	cp.UpdatedAt = s.now()
	s.carts[cart.OwnerID] = cp
	return nil
}

// DeleteCart removes the owner's cart entirely.
func (s *Store) DeleteCart(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, ownerID)
	return nil
}

// GetWishlist returns the owner's wishlist, or an empty one.
func (s *Store) GetWishlist(ctx context.Context, ownerID string) (*domain.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wishlists[ownerID]
	if !ok {
		return &domain.Wishlist{OwnerID: ownerID}, nil
	}
	cp := cloneWishlist(w)
	return &cp, nil
}

// SaveWishlist persists the wishlist.
func (s *Store) SaveWishlist(ctx context.Context, w *domain.Wishlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneWishlist(*w)
	cp.UpdatedAt = s.now()
	s.wishlists[w.OwnerID] = cp
	return nil
}

func cloneCart(cart domain.Cart) domain.Cart {
	cp := cart
	cp.Lines = append([]domain.CartLine(nil), cart.Lines...)
	return cp
}

func cloneWishlist(w domain.Wishlist) domain.Wishlist {
	cp := w
	cp.Products = append([]uuid.UUID(nil), w.Products...)
	return cp
}
