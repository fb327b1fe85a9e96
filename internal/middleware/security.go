package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/AnshRaj112/survey-backend/internal/errs"
	"github.com/AnshRaj112/survey-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// Login routes: one attempt per 5s per IP with a burst of 2.
const (
	LoginRateLimitEvery = 5 * time.Second
	LoginRateLimitBurst = 2
	limiterIdleTTL      = 30 * time.Minute
	limiterSweepEvery   = 5 * time.Minute
)

var LoginPaths = []string{"/api/users/login", "/api/providers/login"}

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// IPRateLimiter is an in-memory token bucket per client IP, applied only to
// the listed paths. Idle buckets are swept during normal calls.
type IPRateLimiter struct {
	limit rate.Limit
	burst int
	paths map[string]bool

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(limit rate.Limit, burst int, paths ...string) *IPRateLimiter {
	l := &IPRateLimiter{
		limit:   limit,
		burst:   burst,
		paths:   make(map[string]bool, len(paths)),
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
	for _, p := range paths {
		l.paths[p] = true
	}
	l.lastSweep = l.now()
	return l
}

// NewLoginRateLimiter limits the user and provider login routes.
func NewLoginRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(rate.Every(LoginRateLimitEvery), LoginRateLimitBurst, LoginPaths...)
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterSweepEvery {
		for key, e := range l.entries {
			if now.Sub(e.lastUse) > limiterIdleTTL {
				delete(l.entries, key)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = now
	return e.limiter.AllowN(now, 1)
}

func (l *IPRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.paths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		if !l.allow(clientip.RealClientIP(r)) {
			writeError(w, errs.NewTooManyRequestsError("Too many login attempts. Please try again later."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProductionSecurity returns the middlewares enabled when ENV=production.
func ProductionSecurity() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		NewLoginRateLimiter().Handler,
	}
}
