package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(limit int, clock *time.Time) *Limiter {
	rl := NewLimiter(Config{RequestsPerMinute: limit})
	rl.now = func() time.Time { return *clock }
	return rl
}

func TestLimiter_Allow(t *testing.T) {
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rl := newTestLimiter(3, &clock)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("fourth request in the window should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("other clients have their own window")
	}

	clock = clock.Add(30 * time.Second)
	if rl.Allow("10.0.0.1") {
		t.Fatal("window has not elapsed yet")
	}
	if got := rl.RetryAfter("10.0.0.1"); got != 30 {
		t.Fatalf("RetryAfter = %d, want 30", got)
	}

	clock = clock.Add(30 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("new window should allow again")
	}

	if m := rl.GetMetrics(); m.TotalHits != 2 || m.ClientCount != 2 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rl := newTestLimiter(5, &clock)
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	clock = clock.Add(11 * time.Minute)
	rl.Allow("10.0.0.2")
	rl.cleanupStaleEntries()

	if m := rl.GetMetrics(); m.ClientCount != 1 {
		t.Fatalf("expected stale client removed, got %d clients", m.ClientCount)
	}
}

func TestMiddleware_OnlyMutating(t *testing.T) {
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rl := newTestLimiter(1, &clock)
	defer rl.Stop()

	ip := func(*http.Request) string { return "192.0.2.1" }
	h := rl.Middleware(ip, Mutating, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodGet, http.StatusNoContent},
		{http.MethodPost, http.StatusNoContent},
		{http.MethodGet, http.StatusNoContent},
		{http.MethodDelete, http.StatusTooManyRequests},
		{http.MethodPatch, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/tasks", nil))
		if rec.Code != tt.want {
			t.Fatalf("%s: status %d, want %d", tt.method, rec.Code, tt.want)
		}
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") != "60" {
			t.Fatalf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
		}
	}
}
