// Package api implements the storefront's JSON API handlers.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/middleware"
	"github.com/atelierhq/atelier/internal/router"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/atelierhq/atelier/internal/shipping"
	"github.com/atelierhq/atelier/internal/telemetry"
)

// Handler bundles the storefront services behind HTTP endpoints.
type Handler struct {
	catalog  service.CatalogService
	cart     service.CartService
	checkout service.CheckoutService
	orders   service.OrderService
	shipping shipping.Provider
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	catalog service.CatalogService,
	cart service.CartService,
	checkout service.CheckoutService,
	orders service.OrderService,
	ship shipping.Provider,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) (*Handler, error) {
	if catalog == nil || cart == nil || checkout == nil || orders == nil {
		return nil, fmt.Errorf("all services are required")
	}
	if ship == nil {
		return nil, fmt.Errorf("shipping provider is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		catalog:  catalog,
		cart:     cart,
		checkout: checkout,
		orders:   orders,
		shipping: ship,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// RegisterRoutes wires the API surface onto the router. The catalog is
// public; cart, wishlist, checkout and orders require an identity.
func (h *Handler) RegisterRoutes(r *router.Router) {
	r.Get("/health", h.Health)

	r.Get("/api/catalog", h.BrowseCatalog)
	r.Get("/api/catalog/{id}", h.GetCatalogItem)
	r.Get("/api/shipping-methods", h.ListShippingMethods)

	auth := r.Group(middleware.RequireIdentity)
	auth.Get("/api/cart", h.GetCart)
	auth.Post("/api/cart/items", h.AddCartItem)
	auth.Put("/api/cart/items/{productID}", h.UpdateCartItem)
	auth.Delete("/api/cart/items/{productID}", h.RemoveCartItem)
	auth.Delete("/api/cart", h.ClearCart)

	auth.Get("/api/wishlist", h.GetWishlist)
	auth.Post("/api/wishlist", h.AddWishlistItem)
	auth.Delete("/api/wishlist/{productID}", h.RemoveWishlistItem)

	auth.Post("/api/checkout", h.Checkout)
	auth.Get("/api/orders", h.ListOrders)
	auth.Get("/api/orders/{id}", h.GetOrder)
	auth.Post("/api/orders/{id}/complete-payment", h.CompletePayment)
	auth.Get("/api/account/stats", h.GetCustomerStats)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// respondError maps domain error codes onto HTTP statuses. Internal details
// never leak to the client.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if fields := domain.GetValidationFields(err); fields != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		})
		return
	}

	code := domain.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case domain.EINVALID:
		status = http.StatusBadRequest
	case domain.ENOTFOUND:
		status = http.StatusNotFound
	case domain.ECONFLICT:
		status = http.StatusConflict
	case domain.EUNAUTHORIZED:
		status = http.StatusUnauthorized
	case domain.EPAYMENT:
		status = http.StatusPaymentRequired
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request error",
			"method", r.Method, "path", r.URL.Path,
			"request_id", domain.RequestIDFromContext(r.Context()),
			"error", err)
	}

	h.respondJSON(w, status, map[string]string{"error": domain.ErrorMessage(err)})
}
