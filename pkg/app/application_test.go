package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bookspace/pkg/config"
	"bookspace/pkg/logger"
	"bookspace/pkg/middleware"
)

func testConfig() *config.Config {
	return &config.Config{
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		RateLimitRequests:  2,
		RateLimitWindow:    time.Minute,
		RequestTimeout:     time.Second,
		IdempotencyTTL:     time.Minute,
		MaxRequestSize:     1024,
		Log:                logger.Discard(),
	}
}

func newChain(t *testing.T, cfg *config.Config, calls *int32) http.Handler {
	t.Helper()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"n":1}}`))
	})
	store := middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)
	limiter := middleware.NewRateLimiter("test", cfg.RateLimitRequests, cfg.RateLimitWindow, nil, cfg.Log)
	return buildChain(cfg, inner, store, limiter)
}

func TestChain_RateLimitsByClient(t *testing.T) {
	cfg := testConfig()
	var calls int32
	h := newChain(t, cfg, &calls)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/places", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	want := []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", statuses, want)
		}
	}
}

func TestChain_RejectsNonJSONBody(t *testing.T) {
	cfg := testConfig()
	var calls int32
	h := newChain(t, cfg, &calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("handler called %d times, want 0", calls)
	}
}

func TestChain_ReplaysIdempotentPost(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 10
	var calls int32
	h := newChain(t, cfg, &calls)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(IdempotencyHeader, "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: status = %d", i, rec.Code)
		}
	}

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestChain_AllowsConfiguredOrigin(t *testing.T) {
	cfg := testConfig()
	var calls int32
	h := newChain(t, cfg, &calls)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/places", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

type countingSweeper struct {
	calls   int
	removed int
}

func (s *countingSweeper) Sweep() int {
	s.calls++
	return s.removed
}

func TestHousekeep_SweepsEveryStore(t *testing.T) {
	a := NewApplication(testConfig())
	otpStore := &countingSweeper{removed: 2}
	limiter := &countingSweeper{}
	a.AddSweeper("otp", otpStore)
	a.AddSweeper("login", limiter)

	a.housekeep()
	a.housekeep()

	if otpStore.calls != 2 || limiter.calls != 2 {
		t.Errorf("sweeps = %d/%d, want 2/2", otpStore.calls, limiter.calls)
	}
}
