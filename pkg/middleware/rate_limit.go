package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "bookspace/pkg/errors"
	httputil "bookspace/pkg/http"
	"bookspace/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type KeyExtractor func(r *http.Request) string

// RateLimiter is a sliding-window limiter keyed by an arbitrary string,
// by default the connection's remote host.
type RateLimiter struct {
	mu        sync.Mutex
	name      string
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor KeyExtractor
	log       *logger.Logger
	now       func() time.Time
}

func NewRateLimiter(name string, limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *RateLimiter {
	if extractor == nil {
		extractor = ClientAddress
	}
	return &RateLimiter{
		name:      name,
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		now:       time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	timestamps := rl.requests[key]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// Sweep forgets keys whose newest request left the window.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	now := rl.now()
	for key, timestamps := range rl.requests {
		if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) >= rl.window {
			delete(rl.requests, key)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) Name() string {
	return rl.name
}

func (rl *RateLimiter) reject(w http.ResponseWriter, r *http.Request, key string) {
	rl.log.Warn("Rate limit exceeded",
		"request_id", RequestIDFromContext(r.Context()),
		"limiter", rl.name,
		"key", key,
		"path", r.URL.Path,
	)
	if err := httputil.WriteError(w, apperrors.TooManyRequests("Too many requests, please try again later")); err != nil {
		rl.log.Error("failed to write rate limit response", "limiter", rl.name, "error", err)
	}
}

// RateLimit applies the limiter to every request passing through.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extractor(r)
			if !limiter.Allow(key) {
				limiter.reject(w, r, key)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRoute applies the limiter to a single httprouter route.
func LimitRoute(limiter *RateLimiter, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := limiter.extractor(r)
		if !limiter.Allow(key) {
			limiter.reject(w, r, key)
			return
		}
		next(w, r, ps)
	}
}

// ClientAddress keys on the connection's remote host. Request headers are
// ignored since any client can set them.
func ClientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ForwardedClientAddress keys on the last X-Forwarded-For hop, the one
// appended by the reverse proxy in front of the service. Only use it when
// every request arrives through such a proxy.
func ForwardedClientAddress(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if i := strings.LastIndex(forwarded, ","); i >= 0 {
		forwarded = forwarded[i+1:]
	}
	if ip := strings.TrimSpace(forwarded); ip != "" {
		return ip
	}
	return ClientAddress(r)
}

// ClientKeyExtractor picks the client key source for rate limiting.
func ClientKeyExtractor(trustProxyHeaders bool) KeyExtractor {
	if trustProxyHeaders {
		return ForwardedClientAddress
	}
	return ClientAddress
}
