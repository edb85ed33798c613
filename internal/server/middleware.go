package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/hakimbdev/tonstoremarketspot/internal/market"
)

// Sessions resolves bearer tokens to principals, one resolver per
// principal kind.
type Sessions interface {
	AdminFromToken(ctx context.Context, token string) (market.Admin, error)
	UserFromToken(ctx context.Context, token string) (market.User, error)
}

type ctxKey int

const (
	adminKey ctxKey = iota
	userKey
)

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if ok := strings.HasPrefix(h, "Bearer "); !ok {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// Guard authenticates requests against the session store. A missing
// credential is a caller error (401), never retried here.
type Guard struct{ Sessions Sessions }

func (g Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		admin, err := g.Sessions.AdminFromToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminKey, admin)))
	})
}

func (g Guard) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		user, err := g.Sessions.UserFromToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// RequireAny admits either principal kind; product reads are shared by
// the storefront and the admin console.
func (g Guard) RequireAny(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		ctx := r.Context()
		if admin, err := g.Sessions.AdminFromToken(ctx, token); err == nil {
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, adminKey, admin)))
			return
		}
		if user, err := g.Sessions.UserFromToken(ctx, token); err == nil {
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, userKey, user)))
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid or expired session")
	})
}

func adminFrom(ctx context.Context) (market.Admin, bool) {
	a, ok := ctx.Value(adminKey).(market.Admin)
	return a, ok
}

func userFrom(ctx context.Context) (market.User, bool) {
	u, ok := ctx.Value(userKey).(market.User)
	return u, ok
}
