package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
)

// catalogItemView is the public JSON shape of one catalog item, translated
// into the requested language.
type catalogItemView struct {
	ID             uuid.UUID         `json:"id"`
	Category       domain.Category   `json:"category"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Material       string            `json:"material,omitempty"`
	PriceCents     int64             `json:"price_cents"`
	CompareAtCents int64             `json:"compare_at_cents,omitempty"`
	Currency       string            `json:"currency"`
	Images         []catalogImage    `json:"images,omitempty"`
	Status         domain.ItemStatus `json:"status"`
	Stock          int               `json:"stock"`
	PublishedAt    *time.Time        `json:"published_at,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
}

type catalogImage struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type catalogPageResponse struct {
	Items      []catalogItemView `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func viewCatalogItem(item *domain.CatalogItem, lang string) catalogItemView {
	t := item.Translate(lang)

	images := make([]catalogImage, 0, len(item.Images))
	for _, img := range item.Images {
		images = append(images, catalogImage{URL: img.URL, ThumbnailURL: img.ThumbnailURL})
	}

	return catalogItemView{
		ID:             item.ID,
		Category:       item.Category,
		Title:          t.Title,
		Description:    t.Description,
		Material:       t.Material,
		PriceCents:     item.PriceCents,
		CompareAtCents: item.CompareAtCents,
		Currency:       item.Currency,
		Images:         images,
		Status:         item.Status,
		Stock:          item.Stock,
		PublishedAt:    item.PublishedAt,
		Tags:           item.Tags,
	}
}

// BrowseCatalog handles GET /api/catalog?category=&status=&q=&cursor=&lang=.
func (h *Handler) BrowseCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := domain.CatalogFilters{
		Category:   domain.Category(q.Get("category")),
		Status:     domain.ItemStatus(q.Get("status")),
		SearchTerm: q.Get("q"),
	}

	page, err := h.catalog.BrowsePage(r.Context(), filters, q.Get("cursor"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.CatalogPagesServed.Inc()
		if filters.SearchTerm != "" {
			h.metrics.CatalogSearches.Inc()
		}
	}

	lang := q.Get("lang")
	resp := catalogPageResponse{
		Items:      make([]catalogItemView, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Items {
		resp.Items = append(resp.Items, viewCatalogItem(&page.Items[i], lang))
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// GetCatalogItem handles GET /api/catalog/{id}.
func (h *Handler) GetCatalogItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, domain.Invalid("catalog.get", "invalid item id"))
		return
	}

	item, err := h.catalog.GetItem(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, viewCatalogItem(item, r.URL.Query().Get("lang")))
}

// ListShippingMethods handles GET /api/shipping-methods.
func (h *Handler) ListShippingMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.shipping.Methods(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"methods": methods})
}
