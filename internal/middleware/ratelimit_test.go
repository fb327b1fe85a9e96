package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func newLimiter(t *testing.T, max int, window time.Duration) (*miniredis.Miniredis, http.Handler) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { client.Close() })
	return m, NewRateLimiter(client, max, window, zerolog.New(io.Discard)).Handler(okHandler)
}

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/surveys", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	m, h := newLimiter(t, 3, time.Minute)

	for i := 1; i <= 3; i++ {
		rec := doRequest(h, "198.51.100.1:1000")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != strconv.Itoa(3-i) {
			t.Errorf("request %d: X-RateLimit-Remaining = %q", i, got)
		}
	}

	rec := doRequest(h, "198.51.100.1:1000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["success"] != false || body["code"] != "TOO_MANY_REQUESTS" {
		t.Errorf("body = %v", body)
	}
	if !m.Exists(BlockedIPKeyPrefix + "198.51.100.1") {
		t.Error("expected ip to be blocked")
	}

	if rec := doRequest(h, "198.51.100.2:1000"); rec.Code != http.StatusOK {
		t.Errorf("other ip status = %d, want 200", rec.Code)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	m, h := newLimiter(t, 1, time.Minute)

	doRequest(h, "198.51.100.1:1000")
	if rec := doRequest(h, "198.51.100.1:1000"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	m.FastForward(time.Minute + time.Second)

	if rec := doRequest(h, "198.51.100.1:1000"); rec.Code != http.StatusOK {
		t.Errorf("status after window = %d, want 200", rec.Code)
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	m, h := newLimiter(t, 1, time.Minute)
	m.SetError("ERR simulated outage")

	for i := 0; i < 3; i++ {
		if rec := doRequest(h, "198.51.100.1:1000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 when redis is down", i, rec.Code)
		}
	}
}

func TestRateLimiterSkipsHealthChecks(t *testing.T) {
	_, h := newLimiter(t, 1, time.Minute)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "198.51.100.1:1000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("health request %d: status = %d", i, rec.Code)
		}
	}
}
