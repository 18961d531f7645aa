package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/asaulyak/goit-pythonweb-hw-012/internal/httpx"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/router"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/service"
)

type ctxKey struct{}

var identityKey ctxKey

type identityResolver interface {
	ResolveCached(ctx context.Context, rawToken string) (service.Identity, error)
}

// Auth authenticates the request through the identity resolver and puts
// the resolved identity on the request context. The resolver goes
// through its snapshot cache, so a burst of requests from one caller
// costs at most one storage read per TTL window.
func Auth(resolver identityResolver) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken := bearerToken(r)
			if rawToken == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			id, err := resolver.ResolveCached(r.Context(), rawToken)
			if err != nil {
				httpx.HandleErr(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if raw, ok := strings.CutPrefix(h, "Bearer "); ok {
		return raw
	}

	return h
}

// IdentityFromContext returns the identity stored by Auth. The zero
// Identity means the request never passed through the middleware.
func IdentityFromContext(ctx context.Context) service.Identity {
	id, _ := ctx.Value(identityKey).(service.Identity)
	return id
}
