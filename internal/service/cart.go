package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
)

// CartService provides business logic for cart and wishlist operations.
// Summaries are always priced against the current catalog; prices freeze only
// when an order is assembled.
type CartService interface {
	GetCartSummary(ctx context.Context, ownerID string) (*domain.CartSummary, error)
	AddItem(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (*domain.CartSummary, error)
	UpdateItemQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (*domain.CartSummary, error)
	RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) (*domain.CartSummary, error)
	ClearCart(ctx context.Context, ownerID string) error

	GetWishlist(ctx context.Context, ownerID string) (*domain.Wishlist, error)
	AddToWishlist(ctx context.Context, ownerID string, productID uuid.UUID) (*domain.Wishlist, error)
	RemoveFromWishlist(ctx context.Context, ownerID string, productID uuid.UUID) (*domain.Wishlist, error)
}

type cartService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewCartService creates a new CartService instance.
func NewCartService(st store.Store, logger *slog.Logger) (CartService, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &cartService{store: st, logger: logger, now: time.Now}, nil
}

func (s *cartService) GetCartSummary(ctx context.Context, ownerID string) (*domain.CartSummary, error) {
	cart, err := s.store.GetCart(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return s.summarize(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (*domain.CartSummary, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.store.GetItem(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to verify product: %w", err)
	}

	cart, err := s.store.GetCart(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart.Add(productID, quantity)
	cart.UpdatedAt = s.now()

	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.summarize(ctx, cart)
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (*domain.CartSummary, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.store.GetCart(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if !cart.SetQuantity(productID, quantity) {
		return nil, ErrCartLineNotFound
	}
	cart.UpdatedAt = s.now()

	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.summarize(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) (*domain.CartSummary, error) {
	cart, err := s.store.GetCart(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if !cart.Remove(productID) {
		return nil, ErrCartLineNotFound
	}
	cart.UpdatedAt = s.now()

	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.summarize(ctx, cart)
}

func (s *cartService) ClearCart(ctx context.Context, ownerID string) error {
	if err := s.store.DeleteCart(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *cartService) GetWishlist(ctx context.Context, ownerID string) (*domain.Wishlist, error) {
	w, err := s.store.GetWishlist(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return w, nil
}

func (s *cartService) AddToWishlist(ctx context.Context, ownerID string, productID uuid.UUID) (*domain.Wishlist, error) {
	if _, err := s.store.GetItem(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to verify product: %w", err)
	}

	w, err := s.store.GetWishlist(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	if w.Add(productID) {
		w.UpdatedAt = s.now()
		if err := s.store.SaveWishlist(ctx, w); err != nil {
			return nil, fmt.Errorf("failed to save wishlist: %w", err)
		}
	}
	return w, nil
}

func (s *cartService) RemoveFromWishlist(ctx context.Context, ownerID string, productID uuid.UUID) (*domain.Wishlist, error) {
	w, err := s.store.GetWishlist(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	if w.Remove(productID) {
		w.UpdatedAt = s.now()
		if err := s.store.SaveWishlist(ctx, w); err != nil {
			return nil, fmt.Errorf("failed to save wishlist: %w", err)
		}
	}
	return w, nil
}

// summarize joins cart lines with current catalog details. Lines whose
// product no longer exists are left in the cart but omitted from the summary.
func (s *cartService) summarize(ctx context.Context, cart *domain.Cart) (*domain.CartSummary, error) {
	summary := &domain.CartSummary{Cart: *cart}

	for _, line := range cart.Lines {
		item, err := s.store.GetItem(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.logger.Warn("cart references missing product",
					"owner_id", cart.OwnerID, "product_id", line.ProductID)
				continue
			}
			return nil, fmt.Errorf("failed to resolve cart line: %w", err)
		}

		t := item.Translate("")
		var imageURL string
		if len(item.Images) > 0 {
			imageURL = item.Images[0].ThumbnailURL
		}

		summary.Items = append(summary.Items, domain.CartItem{
			ProductID:      line.ProductID,
			Title:          t.Title,
			ImageURL:       imageURL,
			Quantity:       line.Quantity,
			UnitPriceCents: item.PriceCents,
			LineSubtotal:   int64(line.Quantity) * item.PriceCents,
		})
		summary.SubtotalCents += int64(line.Quantity) * item.PriceCents
		summary.ItemCount += line.Quantity
	}

	return summary, nil
}
