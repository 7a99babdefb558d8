package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/atelierhq/atelier/internal/domain"
)

func TestCatalogFilters_Fingerprint(t *testing.T) {
	base := domain.CatalogFilters{Category: domain.CategoryPainting, PublishedOnly: true}

	same := domain.CatalogFilters{Category: domain.CategoryPainting, PublishedOnly: true}
	assert.Equal(t, base.Fingerprint(), same.Fingerprint())

	// Search terms are compared case- and whitespace-insensitively.
	a := domain.CatalogFilters{SearchTerm: " Vase "}
	b := domain.CatalogFilters{SearchTerm: "vase"}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	diffs := []domain.CatalogFilters{
		{Category: domain.CategoryPrint, PublishedOnly: true},
		{Category: domain.CategoryPainting},
		{Category: domain.CategoryPainting, PublishedOnly: true, SearchTerm: "vase"},
		{Category: domain.CategoryPainting, PublishedOnly: true, Status: domain.ItemStatusSold},
	}
	for _, d := range diffs {
		assert.NotEqual(t, base.Fingerprint(), d.Fingerprint(), "%+v", d)
	}
}

func TestCursorKey_Before(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	key := domain.CursorKey{PublishedAt: newer, CreatedAt: newer, ID: uuid.MustParse("00000000-0000-0000-0000-000000000001")}

	olderItem := &domain.CatalogItem{PublishedAt: &older, CreatedAt: older, ID: uuid.New()}
	assert.True(t, key.Before(olderItem), "newer key sorts before older item in browse order")

	newerPub := newer.Add(time.Hour)
	newerItem := &domain.CatalogItem{PublishedAt: &newerPub, CreatedAt: newerPub, ID: uuid.New()}
	assert.False(t, key.Before(newerItem))

	// Same timestamps: ID ascending breaks the tie.
	tieHigh := &domain.CatalogItem{PublishedAt: &newer, CreatedAt: newer, ID: uuid.MustParse("00000000-0000-0000-0000-000000000002")}
	assert.True(t, key.Before(tieHigh))
	tieLow := &domain.CatalogItem{PublishedAt: &newer, CreatedAt: newer, ID: uuid.MustParse("00000000-0000-0000-0000-000000000000")}
	assert.False(t, key.Before(tieLow))
}

func TestCatalogItem_Translate(t *testing.T) {
	item := &domain.CatalogItem{
		Translations: map[string]domain.Translation{
			"en": {Title: "Blue Vase"},
			"fr": {Title: "Vase bleu"},
		},
		FallbackLang: "en",
	}

	assert.Equal(t, "Vase bleu", item.Translate("fr").Title)
	assert.Equal(t, "Blue Vase", item.Translate("de").Title, "missing language falls back")
	assert.Equal(t, "Blue Vase", item.Translate("").Title)
}

func TestCatalogItem_Matches(t *testing.T) {
	item := &domain.CatalogItem{
		Translations: map[string]domain.Translation{
			"en": {Title: "Blue Vase"},
		},
		Tags:     []string{"Ceramic"},
		Keywords: []string{"handmade"},
	}

	assert.True(t, item.Matches("vase"))
	assert.True(t, item.Matches("ceramic"))
	assert.True(t, item.Matches("handmade"))
	assert.False(t, item.Matches("sculpture"))
}
