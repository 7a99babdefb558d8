package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
)

// CatalogService provides public catalog browsing: filtered, cursor-paginated
// pages and single-item lookup.
type CatalogService interface {
	// BrowsePage returns one page of published catalog items. The cursor is
	// opaque; an empty cursor starts from the first page. A cursor issued
	// under a different filter set (or a malformed one) restarts from the
	// first page rather than erroring.
	BrowsePage(ctx context.Context, filters domain.CatalogFilters, cursor string) (*domain.CatalogPage, error)

	// GetItem returns a single catalog item by ID.
	GetItem(ctx context.Context, id uuid.UUID) (*domain.CatalogItem, error)
}

type catalogService struct {
	store  store.CatalogStore
	logger *slog.Logger
}

// NewCatalogService creates a new CatalogService instance.
func NewCatalogService(st store.CatalogStore, logger *slog.Logger) (CatalogService, error) {
	if st == nil {
		return nil, fmt.Errorf("catalog store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &catalogService{store: st, logger: logger}, nil
}

// pageCursor is the decoded form of the opaque page cursor. The fingerprint
// binds the cursor to the filter set it was issued under.
type pageCursor struct {
	Key         domain.CursorKey `json:"k"`
	Fingerprint string           `json:"f"`
}

func encodeCursor(key domain.CursorKey, fingerprint string) string {
	data, _ := json.Marshal(pageCursor{Key: key, Fingerprint: fingerprint})
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeCursor(raw string) (*pageCursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cursor: %w", err)
	}
	var c pageCursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse cursor: %w", err)
	}
	return &c, nil
}

func (s *catalogService) BrowsePage(ctx context.Context, filters domain.CatalogFilters, cursor string) (*domain.CatalogPage, error) {
	filters.PublishedOnly = true

	// Terms below the minimum length never reach the store.
	if term := strings.TrimSpace(filters.SearchTerm); term != "" && len([]rune(term)) < domain.MinSearchLength {
		return &domain.CatalogPage{}, nil
	}

	// An unknown category cannot match anything.
	if filters.Category != "" && !domain.ValidCategory(filters.Category) {
		return &domain.CatalogPage{}, nil
	}

	fingerprint := filters.Fingerprint()

	var after *domain.CursorKey
	if cursor != "" {
		decoded, err := decodeCursor(cursor)
		switch {
		case err != nil:
			s.logger.Warn("malformed catalog cursor, restarting from first page", "error", err)
		case decoded.Fingerprint != fingerprint:
			// Filters changed since the cursor was issued.
		default:
			after = &decoded.Key
		}
	}

	items, err := s.store.QueryPage(ctx, domain.CatalogQuery{
		Filters: filters,
		After:   after,
		Limit:   domain.PageSize + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog page: %w", err)
	}

	page := &domain.CatalogPage{}
	if len(items) > domain.PageSize {
		items = items[:domain.PageSize]
		last := items[len(items)-1]
		page.NextCursor = encodeCursor(cursorKeyFor(&last), fingerprint)
	}
	page.Items = items

	return page, nil
}

func (s *catalogService) GetItem(ctx context.Context, id uuid.UUID) (*domain.CatalogItem, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	return item, nil
}

// cursorKeyFor derives the continuation key from the last item on a page.
func cursorKeyFor(item *domain.CatalogItem) domain.CursorKey {
	var pub time.Time
	if item.PublishedAt != nil {
		pub = *item.PublishedAt
	}
	return domain.CursorKey{
		PublishedAt: pub,
		CreatedAt:   item.CreatedAt,
		ID:          item.ID,
	}
}
