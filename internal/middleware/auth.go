package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/auth"
)

// Guard resolves an Authorization header to an identity.
type Guard interface {
	Identify(header string) (auth.Identity, error)
}

// Authorization copies the request's Authorization header into the context
// so per-operation guards can run without access to the request.
func Authorization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.WithAuthorization(r.Context(), r.Header.Get("Authorization"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth verifies the bearer token and attaches the caller's Identity.
// Failures answer 401 with a JSON error body.
func RequireAuth(guard Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := guard.Identify(r.Header.Get("Authorization"))
			if err != nil {
				status := http.StatusUnauthorized
				if apperr.KindOf(err) == apperr.Internal {
					status = http.StatusInternalServerError
				}
				writeError(w, status, apperr.PublicMessage(err))
				return
			}

			ctx := auth.WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
