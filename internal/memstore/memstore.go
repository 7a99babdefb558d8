// Package memstore is an in-memory store.Store implementation used by tests
// and local development. Its transaction runner detects conflicting writes
// to the shared order counter optimistically and retries the callback, so
// the sequencer contract is exercised the same way as against Postgres.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
)

const defaultMaxRetries = 5

// Store holds all collections behind one mutex. Transactions buffer their
// writes and validate the counter version at commit time.
type Store struct {
	mu sync.Mutex

	base       int64
	maxRetries int

	counter    int64
	counterSet bool
	counterVer uint64

	items     map[uuid.UUID]domain.CatalogItem
	orders    map[uuid.UUID]domain.Order
	carts     map[string]domain.Cart
	wishlists map[string]domain.Wishlist
	stats     map[string]domain.CustomerStats

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxRetries overrides the transaction retry bound.
func WithMaxRetries(n int) Option {
	return func(s *Store) { s.maxRetries = n }
}

// WithClock overrides the store clock. Tests use this to freeze time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store. The order counter bootstraps at base on the
// first NextOrderNumber call, so the first issued number is base+1.
func New(base int64, opts ...Option) *Store {
	s := &Store{
		base:       base,
		maxRetries: defaultMaxRetries,
		items:      make(map[uuid.UUID]domain.CatalogItem),
		orders:     make(map[uuid.UUID]domain.Order),
		carts:      make(map[string]domain.Cart),
		wishlists:  make(map[string]domain.Wishlist),
		stats:      make(map[string]domain.CustomerStats),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.Store = (*Store)(nil)

// =============================================================================
// CatalogStore
// =============================================================================

// QueryPage returns up to q.Limit matching items in public browse order.
func (s *Store) QueryPage(ctx context.Context, q domain.CatalogQuery) ([]domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(q.Filters.SearchTerm))

	matched := make([]domain.CatalogItem, 0)
	for _, item := range s.items {
		if q.Filters.PublishedOnly && !item.Published() {
			continue
		}
		if q.Filters.Category != "" && item.Category != q.Filters.Category {
			continue
		}
		if q.Filters.Status != "" && item.Status != q.Filters.Status {
			continue
		}
		if term != "" && !item.Matches(term) {
			continue
		}
		matched = append(matched, cloneItem(item))
	}

	sort.Slice(matched, func(i, j int) bool {
		return browseLess(&matched[i], &matched[j])
	})

	if q.After != nil {
		after := *q.After
		cut := 0
		for cut < len(matched) && !after.Before(&matched[cut]) {
			cut++
		}
		matched = matched[cut:]
	}

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	return matched, nil
}

// GetItem returns a catalog item by ID.
func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := cloneItem(item)
	return &cp, nil
}

// PutItem inserts or replaces a catalog item.
func (s *Store) PutItem(ctx context.Context, item *domain.CatalogItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[item.ID] = cloneItem(*item)
	return nil
}

// browseLess orders items by publishedAt desc, createdAt desc, with item ID
// ascending as a stable tiebreak.
func browseLess(a, b *domain.CatalogItem) bool {
	pa, pb := publishedOrZero(a), publishedOrZero(b)
	if !pa.Equal(pb) {
		return pa.After(pb)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

func publishedOrZero(item *domain.CatalogItem) time.Time {
	if item.PublishedAt != nil {
		return *item.PublishedAt
	}
	return time.Time{}
}

func cloneItem(item domain.CatalogItem) domain.CatalogItem {
	cp := item
	if item.PublishedAt != nil {
		t := *item.PublishedAt
		cp.PublishedAt = &t
	}
	cp.Translations = make(map[string]domain.Translation, len(item.Translations))
	for k, v := range item.Translations {
		cp.Translations[k] = v
	}
	cp.Images = append([]domain.Image(nil), item.Images...)
	cp.Tags = append([]string(nil), item.Tags...)
	cp.Keywords = append([]string(nil), item.Keywords...)
	return cp
}
