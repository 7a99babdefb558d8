package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
)

const catalogColumns = `
	id, category, translations, fallback_lang,
	price_cents, compare_at_cents, currency, images,
	status, stock, published_at, tags, keywords, created_at, updated_at`

// QueryPage returns up to q.Limit items matching q.Filters, keyset-paginated
// in public browse order.
func (s *Store) QueryPage(ctx context.Context, q domain.CatalogQuery) ([]domain.CatalogItem, error) {
	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Filters.PublishedOnly {
		where = append(where, "published_at IS NOT NULL")
	}
	if q.Filters.Category != "" {
		where = append(where, "category = "+arg(string(q.Filters.Category)))
	}
	if q.Filters.Status != "" {
		where = append(where, "status = "+arg(string(q.Filters.Status)))
	}
	if term := strings.TrimSpace(q.Filters.SearchTerm); term != "" {
		p := arg("%" + term + "%")
		where = append(where, fmt.Sprintf(
			"(translations::text ILIKE %s OR array_to_string(tags, ' ') ILIKE %s OR array_to_string(keywords, ' ') ILIKE %s)",
			p, p, p))
	}
	if q.After != nil {
		pub := arg(q.After.PublishedAt)
		created := arg(q.After.CreatedAt)
		id := arg(q.After.ID)
		where = append(where, fmt.Sprintf(`(
			COALESCE(published_at, '-infinity') < %s
			OR (COALESCE(published_at, '-infinity') = %s AND created_at < %s)
			OR (COALESCE(published_at, '-infinity') = %s AND created_at = %s AND id::text > %s::text)
		)`, pub, pub, created, pub, created, id))
	}

	query := `SELECT` + catalogColumns + ` FROM catalog_items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY published_at DESC NULLS LAST, created_at DESC, id::text ASC"
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog page: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetItem returns a single catalog item.
func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*domain.CatalogItem, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+catalogColumns+` FROM catalog_items WHERE id = $1`, id)

	item, err := scanCatalogItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	return item, nil
}

// PutItem inserts or replaces a catalog item.
func (s *Store) PutItem(ctx context.Context, item *domain.CatalogItem) error {
	translations, err := json.Marshal(item.Translations)
	if err != nil {
		return fmt.Errorf("failed to encode translations: %w", err)
	}
	images, err := json.Marshal(item.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO catalog_items (
			id, category, translations, fallback_lang,
			price_cents, compare_at_cents, currency, images,
			status, stock, published_at, tags, keywords, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			translations = EXCLUDED.translations,
			fallback_lang = EXCLUDED.fallback_lang,
			price_cents = EXCLUDED.price_cents,
			compare_at_cents = EXCLUDED.compare_at_cents,
			currency = EXCLUDED.currency,
			images = EXCLUDED.images,
			status = EXCLUDED.status,
			stock = EXCLUDED.stock,
			published_at = EXCLUDED.published_at,
			tags = EXCLUDED.tags,
			keywords = EXCLUDED.keywords,
			updated_at = now()`,
		item.ID, item.Category, translations, item.FallbackLang,
		item.PriceCents, item.CompareAtCents, item.Currency, images,
		item.Status, item.Stock, item.PublishedAt, item.Tags, item.Keywords,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put catalog item: %w", err)
	}
	return nil
}

// scanCatalogItem reads one catalog row.
func scanCatalogItem(row pgx.Row) (*domain.CatalogItem, error) {
	var (
		item                 domain.CatalogItem
		translations, images []byte
	)

	err := row.Scan(
		&item.ID, &item.Category, &translations, &item.FallbackLang,
		&item.PriceCents, &item.CompareAtCents, &item.Currency, &images,
		&item.Status, &item.Stock, &item.PublishedAt, &item.Tags, &item.Keywords,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(translations, &item.Translations); err != nil {
		return nil, fmt.Errorf("failed to decode translations: %w", err)
	}
	if err := json.Unmarshal(images, &item.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}

	return &item, nil
}
