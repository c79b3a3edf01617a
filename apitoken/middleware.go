package apitoken

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey int

const tokenContextKey contextKey = iota

// WithToken returns a copy of ctx carrying t.
func WithToken(ctx context.Context, t *Token) context.Context {
	return context.WithValue(ctx, tokenContextKey, t)
}

// FromContext returns the token stored by [Authenticate], or nil.
func FromContext(ctx context.Context) *Token {
	t, _ := ctx.Value(tokenContextKey).(*Token)
	return t
}

// Authenticate is middleware that requires a valid "Authorization: Bearer"
// token from s and stores it in the request context.
func Authenticate(s *Set) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			plain := bearerToken(r)
			if plain == "" {
				writeJSONError(w, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			t, err := s.Authenticate(plain)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), t)))
		})
	}
}

// RequireAbilities is middleware that rejects requests whose token lacks any
// of abilities.  It must run after [Authenticate].
func RequireAbilities(abilities ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := FromContext(r.Context())
			if t == nil {
				writeJSONError(w, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			if !t.CanAll(abilities...) {
				writeJSONError(w, http.StatusForbidden, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
