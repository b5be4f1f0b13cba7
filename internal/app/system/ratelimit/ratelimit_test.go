package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/system/ratelimit"
)

func TestLimiter_BurstThenDeny(t *testing.T) {
	l := ratelimit.New(1, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow("user:1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("user:1") {
		t.Error("fourth request should be denied")
	}
	if !l.Allow("user:2") {
		t.Error("other keys have their own bucket")
	}
	l.Reset("user:1")
	if !l.Allow("user:1") {
		t.Error("Reset should restore the burst")
	}
}

func TestMiddleware(t *testing.T) {
	l := ratelimit.New(1, 1)
	h := ratelimit.Middleware(l,
		func(r *http.Request) string { return r.Header.Get("X-User") },
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	tests := []struct {
		user string
		want int
	}{
		{"a", http.StatusOK},
		{"a", http.StatusTooManyRequests},
		{"", http.StatusOK},
		{"", http.StatusOK},
	}
	for i, tt := range tests {
		req := httptest.NewRequest("POST", "/api/recommendations/generateCareer", nil)
		req.Header.Set("X-User", tt.user)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("request %d: status %d, want %d", i, rec.Code, tt.want)
		}
	}
}
