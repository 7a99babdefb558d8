// Package store defines the persistence interfaces consumed by the service
// layer. Two implementations exist: postgres (production) and memstore
// (tests and local development). Both honor the same transactional contract.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
)

// Storage errors shared by implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned inside a transaction attempt when a
	// conflicting concurrent write is observed. The transaction runner
	// retries the whole callback on this error.
	ErrConflict = errors.New("transaction conflict")

	// ErrRetriesExhausted is returned by RunTransaction when the retry
	// bound is exceeded. No durable writes have been applied.
	ErrRetriesExhausted = errors.New("transaction retries exhausted")
)

// CatalogStore provides read access to the catalog collection.
type CatalogStore interface {
	// QueryPage returns up to q.Limit items matching q.Filters, strictly
	// after q.After in public browse order (publishedAt desc, createdAt
	// desc). The caller derives the continuation cursor from the last
	// returned item.
	QueryPage(ctx context.Context, q domain.CatalogQuery) ([]domain.CatalogItem, error)

	// GetItem returns a single catalog item, ErrNotFound if absent.
	GetItem(ctx context.Context, id uuid.UUID) (*domain.CatalogItem, error)

	// PutItem inserts or replaces a catalog item. Used by the admin
	// collaborator and by test fixtures; the storefront core only reads.
	PutItem(ctx context.Context, item *domain.CatalogItem) error
}

// CartStore persists cart and wishlist aggregates per owner.
type CartStore interface {
	// GetCart returns the owner's cart, or an empty cart if none exists.
	GetCart(ctx context.Context, ownerID string) (*domain.Cart, error)

	// SaveCart persists the cart, replacing any previous state.
	SaveCart(ctx context.Context, cart *domain.Cart) error

	// DeleteCart removes the owner's cart entirely. Deleting a missing
	// cart is not an error.
	DeleteCart(ctx context.Context, ownerID string) error

	// GetWishlist returns the owner's wishlist, or an empty one.
	GetWishlist(ctx context.Context, ownerID string) (*domain.Wishlist, error)

	// SaveWishlist persists the wishlist.
	SaveWishlist(ctx context.Context, w *domain.Wishlist) error
}

// Tx exposes the write handles available inside a checkout transaction.
// The callback passed to RunTransaction may execute more than once, so it
// must be free of non-idempotent side effects beyond these handles.
type Tx interface {
	// NextOrderNumber reads the shared order counter, increments it by
	// one, and returns the new value. The first call ever bootstraps the
	// counter at the store's configured base and returns base+1. The
	// read-increment-write is isolated against concurrent transactions:
	// two concurrent checkouts never observe the same next value.
	NextOrderNumber(ctx context.Context) (int64, error)

	// InsertOrder writes a new order record.
	InsertOrder(ctx context.Context, order *domain.Order) error

	// AddCustomerStats increments the user's denormalized order stats.
	AddCustomerStats(ctx context.Context, userID string, orders int64, spentCents int64) error
}

// OrderStore persists orders, the shared order counter and customer stats.
type OrderStore interface {
	// RunTransaction executes fn inside one durable transaction. On a
	// conflicting concurrent write the whole callback is retried up to an
	// implementation-defined bound; exhaustion surfaces as
	// ErrRetriesExhausted with zero durable writes applied.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// GetOrder returns an order by ID, ErrNotFound if absent.
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// ListOrdersByUser returns a user's orders, newest first.
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// TransitionPayment applies a guarded payment-status transition as a
	// single atomic update, appending the resulting history entries.
	// Returns the updated order, or an ECONFLICT domain error when the
	// transition is illegal for the order's current state.
	TransitionPayment(ctx context.Context, orderID uuid.UUID, to domain.PaymentStatus, note string) (*domain.Order, error)

	// GetCustomerStats returns the user's stats; a user with no orders
	// yields zero-valued stats, not ErrNotFound.
	GetCustomerStats(ctx context.Context, userID string) (*domain.CustomerStats, error)

	// CurrentOrderNumber returns the last issued counter value without
	// consuming one. Used for diagnostics and tests.
	CurrentOrderNumber(ctx context.Context) (int64, error)
}

// Store bundles all persistence interfaces behind one value for wiring.
type Store interface {
	CatalogStore
	CartStore
	OrderStore
}
