package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atelierhq/atelier/internal/telemetry"
)

// Metrics records request counts and latency per route.
func Metrics(m *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			path := normalizePath(r.URL.Path)
			m.RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
			m.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath collapses dynamic path segments so metric labels stay low
// cardinality.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/catalog/"):
		return "/api/catalog/:id"
	case strings.HasPrefix(path, "/api/cart/items/"):
		return "/api/cart/items/:product_id"
	case strings.HasPrefix(path, "/api/wishlist/"):
		return "/api/wishlist/:product_id"
	case strings.HasPrefix(path, "/api/orders/") && strings.HasSuffix(path, "/complete-payment"):
		return "/api/orders/:id/complete-payment"
	case strings.HasPrefix(path, "/api/orders/"):
		return "/api/orders/:id"
	}
	return path
}
