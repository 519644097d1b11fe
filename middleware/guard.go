package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/goCred/jwt"
)

// TokenParser verifies access tokens. [goCred.Service] implements it.
type TokenParser interface {
	ParseToken(token string) (*jwt.AccessClaims, error)
}

type claimsContextKey struct{}

// ClaimsFromContext returns the claims stored by a guard.
func ClaimsFromContext(ctx context.Context) (*jwt.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.AccessClaims)
	return claims, ok
}

// Guard rejects requests without a valid bearer access token. It does not
// touch the record store.
func Guard(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verify(parser, r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verify(parser TokenParser, r *http.Request) (*jwt.AccessClaims, bool) {
	if parser == nil {
		return nil, false
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, false
	}

	claims, err := parser.ParseToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
