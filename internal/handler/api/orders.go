package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
)

type orderResponse struct {
	ID     uuid.UUID `json:"id"`
	Number string    `json:"number"`

	Lines   []domain.OrderLine      `json:"lines"`
	Pricing domain.PricingBreakdown `json:"pricing"`

	ShippingAddress domain.Address `json:"shipping_address"`
	BillingAddress  domain.Address `json:"billing_address"`
	ShippingMethod  string         `json:"shipping_method"`
	PaymentMethod   string         `json:"payment_method"`

	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	Status        domain.OrderStatus   `json:"status"`
	History       []domain.StatusEntry `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func viewOrder(order *domain.Order) orderResponse {
	return orderResponse{
		ID:              order.ID,
		Number:          order.Number,
		Lines:           order.Lines,
		Pricing:         order.Pricing,
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		ShippingMethod:  order.ShippingMethod,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		Status:          order.Status,
		History:         order.History,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// ListOrders handles GET /api/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), domain.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, viewOrder(&orders[i]))
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"orders": resp})
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, domain.Invalid("orders.get", "invalid order id"))
		return
	}

	order, err := h.orders.GetOrder(r.Context(), domain.UserIDFromContext(r.Context()), orderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, viewOrder(order))
}

// CompletePayment handles POST /api/orders/{id}/complete-payment.
func (h *Handler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, domain.Invalid("orders.complete", "invalid order id"))
		return
	}

	order, err := h.orders.CompletePayment(r.Context(), domain.UserIDFromContext(r.Context()), orderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, viewOrder(order))
}

// GetCustomerStats handles GET /api/account/stats.
func (h *Handler) GetCustomerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.GetCustomerStats(r.Context(), domain.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"total_orders":      stats.TotalOrders,
		"total_spent_cents": stats.TotalSpentCents,
	})
}
