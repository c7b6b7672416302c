package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"worktime/worklog"
)

type contextKey string

const identityKey contextKey = "worktime-identity"

// WithIdentity stores the caller on the context.
func WithIdentity(ctx context.Context, identity worklog.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// FromContext retrieves the caller stored by WithIdentity.
func FromContext(ctx context.Context) (worklog.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(worklog.Identity)
	return identity, ok
}

// Middleware rejects requests without a valid bearer token.
type Middleware struct {
	Config Config
}

func NewMiddleware(cfg Config) Middleware {
	return Middleware{Config: cfg}
}

func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.parseRequest(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set("WWW-Authenticate", `Bearer realm="worktime"`)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "UNAUTHENTICATED",
				"message": err.Error(),
			})
			return
		}
		ctx := WithIdentity(r.Context(), worklog.Identity{UserID: claims.Subject})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, ErrInvalidToken
	}
	return Parse(header[len("Bearer "):], m.Config)
}
