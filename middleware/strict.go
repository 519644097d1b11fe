package middleware

import (
	"context"
	"net/http"

	goCred "github.com/MrEthical07/goCred"
)

// Service is the subset of [goCred.Service] used by [RequireRecord].
type Service interface {
	TokenParser
	Lookup(ctx context.Context, username string) (*goCred.CredentialRecord, error)
}

// RequireRecord behaves like [Guard] and additionally rejects tokens whose
// subject no longer has a stored record. It costs one store read per request.
func RequireRecord(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verify(svc, r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if _, err := svc.Lookup(r.Context(), claims.Subject); err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
