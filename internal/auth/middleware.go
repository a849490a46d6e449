package auth

import (
	"errors"
	"net/http"
)

// Middleware resolves the caller identity once per request and stores it in
// the request context. Outside dev mode, requests without a usable bearer
// token are rejected here and never reach a handler.
func Middleware(rs Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, err := rs.ResolveSubject(r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, ErrUnauthenticated) {
					http.Error(w, "Authorization required", http.StatusUnauthorized)
				} else {
					http.Error(w, "Invalid token", http.StatusUnauthorized)
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), sub)))
		})
	}
}
