package session

import (
	"context"
	"fmt"
	"net/http"
)

// IntegrationError reports use of the gate where none is active. It is a
// programmer error and is not expected to be handled at runtime.
type IntegrationError struct {
	Op string
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("session: %s used without an active gate", e.Op)
}

type gateKey struct{}

// WithGate returns a copy of ctx carrying g.
func WithGate(ctx context.Context, g *Gate) context.Context {
	return context.WithValue(ctx, gateKey{}, g)
}

// FromContext returns the gate attached to ctx.
func FromContext(ctx context.Context) (*Gate, error) {
	g, ok := ctx.Value(gateKey{}).(*Gate)
	if !ok || g == nil {
		return nil, &IntegrationError{Op: "lookup"}
	}
	return g, nil
}

// MustFromContext is FromContext for callers wired by Middleware; it panics
// with the IntegrationError when no gate is attached.
func MustFromContext(ctx context.Context) *Gate {
	g, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return g
}

// Middleware attaches g to every request context.
func Middleware(g *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithGate(r.Context(), g)))
		})
	}
}
