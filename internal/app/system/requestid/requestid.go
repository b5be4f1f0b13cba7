// internal/app/system/requestid/requestid.go

// Package requestid tags every request with a ULID and records the client
// metadata that audit entries and error envelopes carry.
package requestid

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Header is echoed on every response and honoured on input when well formed.
const Header = "X-Request-ID"

// Meta describes the inbound request.
type Meta struct {
	ID        string
	IP        string
	UserAgent string
}

type ctxKey struct{}

// Middleware assigns a request id and stores Meta in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if _, err := ulid.ParseStrict(id); err != nil {
			id = ulid.Make().String()
		}
		w.Header().Set(Header, id)

		m := Meta{ID: id, IP: clientIP(r), UserAgent: r.UserAgent()}
		next.ServeHTTP(w, r.WithContext(With(r.Context(), m)))
	})
}

// With returns ctx carrying m.
func With(ctx context.Context, m Meta) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// From returns the request metadata, or the zero Meta outside a request.
func From(ctx context.Context) Meta {
	m, _ := ctx.Value(ctxKey{}).(Meta)
	return m
}

// ID returns the request id in ctx, or "".
func ID(ctx context.Context) string { return From(ctx).ID }

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
