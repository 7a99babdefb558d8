package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
)

type cartItemView struct {
	ProductID      uuid.UUID `json:"product_id"`
	Title          string    `json:"title"`
	ImageURL       string    `json:"image_url,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LineSubtotal   int64     `json:"line_subtotal_cents"`
}

type cartResponse struct {
	Items         []cartItemView `json:"items"`
	SubtotalCents int64          `json:"subtotal_cents"`
	ItemCount     int            `json:"item_count"`
}

func viewCartSummary(summary *domain.CartSummary) cartResponse {
	resp := cartResponse{
		Items:         make([]cartItemView, 0, len(summary.Items)),
		SubtotalCents: summary.SubtotalCents,
		ItemCount:     summary.ItemCount,
	}
	for _, item := range summary.Items {
		resp.Items = append(resp.Items, cartItemView{
			ProductID:      item.ProductID,
			Title:          item.Title,
			ImageURL:       item.ImageURL,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineSubtotal:   item.LineSubtotal,
		})
	}
	return resp
}

// GetCart handles GET /api/cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.cart.GetCartSummary(r.Context(), domain.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, viewCartSummary(summary))
}

// AddCartItem handles POST /api/cart/items.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID uuid.UUID `json:"product_id"`
		Quantity  int       `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, domain.Invalid("cart.add", "invalid request body"))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	summary, err := h.cart.AddItem(r.Context(), domain.UserIDFromContext(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.CartUpdates.WithLabelValues("add").Inc()
	}
	h.respondJSON(w, http.StatusOK, viewCartSummary(summary))
}

// UpdateCartItem handles PUT /api/cart/items/{productID}.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		h.respondError(w, r, domain.Invalid("cart.update", "invalid product id"))
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, domain.Invalid("cart.update", "invalid request body"))
		return
	}

	summary, err := h.cart.UpdateItemQuantity(r.Context(), domain.UserIDFromContext(r.Context()), productID, req.Quantity)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.CartUpdates.WithLabelValues("update").Inc()
	}
	h.respondJSON(w, http.StatusOK, viewCartSummary(summary))
}

// RemoveCartItem handles DELETE /api/cart/items/{productID}.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		h.respondError(w, r, domain.Invalid("cart.remove", "invalid product id"))
		return
	}

	summary, err := h.cart.RemoveItem(r.Context(), domain.UserIDFromContext(r.Context()), productID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.CartUpdates.WithLabelValues("remove").Inc()
	}
	h.respondJSON(w, http.StatusOK, viewCartSummary(summary))
}

// ClearCart handles DELETE /api/cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.ClearCart(r.Context(), domain.UserIDFromContext(r.Context())); err != nil {
		h.respondError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.CartUpdates.WithLabelValues("clear").Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWishlist handles GET /api/wishlist.
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wl, err := h.cart.GetWishlist(r.Context(), domain.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"products": wl.Products})
}

// AddWishlistItem handles POST /api/wishlist.
func (h *Handler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID uuid.UUID `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, domain.Invalid("wishlist.add", "invalid request body"))
		return
	}

	wl, err := h.cart.AddToWishlist(r.Context(), domain.UserIDFromContext(r.Context()), req.ProductID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"products": wl.Products})
}

// RemoveWishlistItem handles DELETE /api/wishlist/{productID}.
func (h *Handler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		h.respondError(w, r, domain.Invalid("wishlist.remove", "invalid product id"))
		return
	}

	wl, err := h.cart.RemoveFromWishlist(r.Context(), domain.UserIDFromContext(r.Context()), productID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"products": wl.Products})
}
