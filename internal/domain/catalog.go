package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CATALOG DOMAIN TYPES
// =============================================================================

// PageSize is the number of catalog items returned per public catalog page.
const PageSize = 12

// MinSearchLength is the minimum search term length before the store is
// consulted. Shorter terms short-circuit to an empty result.
const MinSearchLength = 2

// Category represents the closed set of artwork categories.
type Category string

const (
	CategoryPainting  Category = "painting"
	CategoryPrint     Category = "print"
	CategorySculpture Category = "sculpture"
	CategoryCeramics  Category = "ceramics"
	CategoryTextile   Category = "textile"
)

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryPainting, CategoryPrint, CategorySculpture, CategoryCeramics, CategoryTextile:
		return true
	}
	return false
}

// ItemStatus represents the availability state of a catalog item.
type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "available"
	ItemStatusSold        ItemStatus = "sold"
	ItemStatusMadeToOrder ItemStatus = "made_to_order"
)

// Translation holds the localized fields of a catalog item for one language.
type Translation struct {
	Title       string
	Description string
	Material    string
}

// Image is a catalog item image with its canonical and thumbnail URLs.
type Image struct {
	URL          string
	ThumbnailURL string
}

// CatalogItem represents a single artwork in the catalog.
// Items are created and edited by the admin collaborator; this core only
// reads them. An item is visible on public catalog pages iff PublishedAt is
// non-nil.
type CatalogItem struct {
	ID       uuid.UUID
	Category Category

	// Translations maps language codes to localized fields. At least one
	// language must resolve; FallbackLang is used when the requested
	// language is missing.
	Translations map[string]Translation
	FallbackLang string

	// Pricing in minor currency units (integer cents).
	PriceCents     int64
	CompareAtCents int64 // 0 = no compare-at price
	Currency       string

	Images []Image
	Status ItemStatus
	Stock  int

	PublishedAt *time.Time // nil = draft
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Tags     []string
	Keywords []string
}

// Published reports whether the item is eligible for public catalog pages.
func (i *CatalogItem) Published() bool {
	return i.PublishedAt != nil
}

// Translate resolves the item's localized fields for the given language,
// falling back to FallbackLang and then to any available language.
func (i *CatalogItem) Translate(lang string) Translation {
	if t, ok := i.Translations[lang]; ok {
		return t
	}
	if t, ok := i.Translations[i.FallbackLang]; ok {
		return t
	}
	for _, t := range i.Translations {
		return t
	}
	return Translation{}
}

// Matches reports whether the item matches a naive substring search over its
// translated titles, tags and keywords. The term must already be lowercased.
func (i *CatalogItem) Matches(term string) bool {
	for _, t := range i.Translations {
		if strings.Contains(strings.ToLower(t.Title), term) {
			return true
		}
	}
	for _, tag := range i.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	for _, kw := range i.Keywords {
		if strings.Contains(strings.ToLower(kw), term) {
			return true
		}
	}
	return false
}

// =============================================================================
// CATALOG QUERIES AND PAGINATION
// =============================================================================

// CatalogFilters describes the filter set for a catalog page query.
// The zero value selects all published items.
type CatalogFilters struct {
	Category      Category   // empty = all categories
	Status        ItemStatus // empty = all statuses
	SearchTerm    string     // empty = no search predicate
	PublishedOnly bool
}

// Fingerprint returns a stable identifier for the filter set. Cursors embed
// it so that a cursor issued under one filter set is never applied to
// another.
func (f CatalogFilters) Fingerprint() string {
	var b strings.Builder
	b.WriteString(string(f.Category))
	b.WriteByte('|')
	b.WriteString(string(f.Status))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(strings.TrimSpace(f.SearchTerm)))
	b.WriteByte('|')
	if f.PublishedOnly {
		b.WriteByte('1')
	} else {
		b.WriteByte('0')
	}
	return b.String()
}

// CursorKey identifies the position of the last item returned by a page
// query. Pages are ordered by (PublishedAt desc, CreatedAt desc, ID asc as a
// tiebreak); the next page contains items strictly after this key.
type CursorKey struct {
	PublishedAt time.Time `json:"p"`
	CreatedAt   time.Time `json:"c"`
	ID          uuid.UUID `json:"id"`
}

// Before reports whether the item at this key sorts strictly before the
// given item in public browse order.
func (k CursorKey) Before(item *CatalogItem) bool {
	var pub time.Time
	if item.PublishedAt != nil {
		pub = *item.PublishedAt
	}
	if !k.PublishedAt.Equal(pub) {
		return k.PublishedAt.After(pub)
	}
	if !k.CreatedAt.Equal(item.CreatedAt) {
		return k.CreatedAt.After(item.CreatedAt)
	}
	return k.ID.String() < item.ID.String()
}

// CatalogQuery is the concrete query handed to a catalog store: the composed
// filter set, an optional decoded cursor position, and a page size limit.
type CatalogQuery struct {
	Filters CatalogFilters
	After   *CursorKey
	Limit   int
}

// CatalogPage is one page of catalog results. NextCursor is an opaque token
// for the following page, or empty when the result set is exhausted.
type CatalogPage struct {
	Items      []CatalogItem
	NextCursor string
}

// Exhausted reports whether more pages may exist after this one.
func (p *CatalogPage) Exhausted() bool {
	return p.NextCursor == ""
}
