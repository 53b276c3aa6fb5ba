package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllowBurstThenDeny(t *testing.T) {
	l := New(1, 2)
	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("a") {
		t.Fatal("third immediate event should be denied")
	}
	// other keys have their own bucket
	if !l.Allow("b") {
		t.Fatal("independent key should be allowed")
	}
}

func TestDisabledLimiterAlwaysAllows(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		if !l.Allow("a") {
			t.Fatal("disabled limiter must allow everything")
		}
	}
	var nilL *Limiter
	if !nilL.Allow("a") {
		t.Fatal("nil limiter must allow everything")
	}
}

func TestMiddlewareReturns429(t *testing.T) {
	l := New(1, 1)
	h := l.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second immediate request should be limited, got %d", rec.Code)
	}
}

func TestKeyFromRequestPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := KeyFromRequest(req); got != "203.0.113.9" {
		t.Fatalf("want forwarded client IP, got %q", got)
	}
	req.Header.Del("X-Forwarded-For")
	if got := KeyFromRequest(req); got != "10.0.0.1" {
		t.Fatalf("want remote host, got %q", got)
	}
}
