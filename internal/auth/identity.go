// Package auth resolves the owner a request acts for.
package auth

import (
	"context"
	"net/http"
)

// Identity is the resolved caller. OwnerID scopes every record the caller may touch.
type Identity struct {
	OwnerID string
	Method  string
}

// Resolver extracts an identity from a request.
type Resolver interface {
	Resolve(r *http.Request) (Identity, bool)
}

// Chain tries each resolver in order and returns the first match.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(r *http.Request) (Identity, bool) {
	for _, res := range c {
		if res == nil {
			continue
		}
		if id, ok := res.Resolve(r); ok && id.OwnerID != "" {
			return id, true
		}
	}
	return Identity{}, false
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by Middleware, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.OwnerID != ""
}

// Middleware attaches the resolved identity to the request context.
// Requests without one pass through; handlers decide how to reject them.
func Middleware(res Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := res.Resolve(r); ok {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
