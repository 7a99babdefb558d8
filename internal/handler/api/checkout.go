package api

import (
	"encoding/json"
	"net/http"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/service"
)

// Checkout handles POST /api/checkout. On success the order is created and
// payment settles afterwards; clients should poll the order for its payment
// status.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, domain.Invalid("checkout", "invalid request body"))
		return
	}

	order, err := h.checkout.Checkout(r.Context(), domain.UserIDFromContext(r.Context()), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, viewOrder(order))
}
