package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/atelierhq/atelier/internal/domain"
)

// Identity headers set by the upstream identity provider. Authentication
// itself happens outside this service; by the time a request reaches us the
// edge has already verified the user and stamped these headers.
const (
	UserIDHeader    = "X-User-ID"
	UserNameHeader  = "X-User-Name"
	UserEmailHeader = "X-User-Email"
)

// Identity extracts the verified identity headers into the request context.
// Requests without the headers proceed anonymously.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		id := &domain.Identity{
			UserID: userID,
			Name:   r.Header.Get(UserNameHeader),
			Email:  r.Header.Get(UserEmailHeader),
		}
		ctx := domain.NewContextWithIdentity(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity rejects requests that carry no identity.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if domain.UserIDFromContext(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "authentication required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
