package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/api/middleware"
)

func TestCorrelationID_PropagatesCallerHeader(t *testing.T) {
	var seen string
	handler := middleware.CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.CorrelationIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set(middleware.HeaderCorrelationID, "caller-abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "caller-abc-123" {
		t.Fatalf("handler saw correlation ID %q, want caller's", seen)
	}
	if got := rec.Header().Get(middleware.HeaderCorrelationID); got != "caller-abc-123" {
		t.Fatalf("response echoed %q, want caller's ID", got)
	}
}

func TestCorrelationID_MintsWhenMissing(t *testing.T) {
	var seen string
	handler := middleware.CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.CorrelationIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if seen == "" {
		t.Fatal("expected a minted correlation ID on the context")
	}
	if got := rec.Header().Get(middleware.HeaderCorrelationID); got != seen {
		t.Fatalf("response header %q does not match context value %q", got, seen)
	}
}

func TestCorrelationIDFrom_NoMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	if got := middleware.CorrelationIDFrom(req.Context()); got != "" {
		t.Fatalf("expected empty ID without the middleware, got %q", got)
	}
}
