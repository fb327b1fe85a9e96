package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/survey-backend/internal/errs"
	"github.com/AnshRaj112/survey-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// RateLimitKeyPrefix is the Redis key prefix for per-IP counters
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix marks an IP that exceeded its window
	BlockedIPKeyPrefix = "blocked_ip:"
)

// RateLimiter counts requests per IP in Redis so the limit holds across
// instances. An IP that exceeds the limit is blocked for the rest of one
// window. Health checks are exempt and Redis failures let the request through.
type RateLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	log    zerolog.Logger
}

func NewRateLimiter(client *redis.Client, maxRequests int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{client: client, max: maxRequests, window: window, log: log}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/health") {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientip.RealClientIP(r)

		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		blocked, err := rl.client.Exists(ctx, BlockedIPKeyPrefix+ip).Result()
		if err != nil {
			rl.failOpen(err, ip)
			next.ServeHTTP(w, r)
			return
		}
		if blocked > 0 {
			rl.reject(w)
			return
		}

		count, err := rl.hit(ctx, ip)
		if err != nil {
			rl.failOpen(err, ip)
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(rl.max) {
			if err := rl.client.Set(ctx, BlockedIPKeyPrefix+ip, "1", rl.window).Err(); err != nil {
				rl.failOpen(err, ip)
			}
			rl.reject(w)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.max))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(rl.max)-count, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(rl.window).Unix(), 10))

		next.ServeHTTP(w, r)
	})
}

// hit increments the counter for ip, starting the window on the first request.
func (rl *RateLimiter) hit(ctx context.Context, ip string) (int64, error) {
	key := RateLimitKeyPrefix + ip

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (rl *RateLimiter) reject(w http.ResponseWriter) {
	w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
	writeError(w, errs.NewTooManyRequestsError(
		fmt.Sprintf("Rate limit exceeded. Please try again in %d seconds.", int(rl.window.Seconds()))))
}

func (rl *RateLimiter) failOpen(err error, ip string) {
	rl.log.Warn().Err(err).Str("ip", ip).Msg("rate limiter unavailable, allowing request")
}
