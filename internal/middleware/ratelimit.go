package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/cache"
	"github.com/vitorvieirah/projeto-importacao-irisk/pkg/apierror"
)

// KeyFunc derives the rate-limit bucket for a request.
type KeyFunc func(r *http.Request) string

// RateLimitConfig holds configuration for one fixed-window limiter.
type RateLimitConfig struct {
	Name    string
	Counter cache.Counter
	Limit   int64
	Window  time.Duration
	KeyFunc KeyFunc
	Logger  *slog.Logger
}

// NewRateLimitMiddleware creates a fixed-window limiter. Requests over the
// limit get 429 with Retry-After. Counter failures let the request through.
func NewRateLimitMiddleware(cfg RateLimitConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = ClientIPKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.Name + ":" + keyFunc(r)

			count, ttl, err := cfg.Counter.Incr(r.Context(), key, cfg.Window)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limit counter failed, allowing request",
					"limiter", cfg.Name,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			remaining := cfg.Limit - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(cfg.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > cfg.Limit {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(ttl, cfg.Window)))
				logger.InfoContext(r.Context(), "rate limit exceeded",
					"limiter", cfg.Name,
					"key", key,
					"count", count,
				)
				writeError(w, apierror.TooManyRequests("Too many requests, please try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIPKey buckets by the remote address host.
func ClientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// OwnerKeyFunc buckets by the verified owner, falling back to the client IP for
// unauthenticated requests.
func OwnerKeyFunc(r *http.Request) string {
	if owner := GetOwnerFromContext(r.Context()); !owner.IsZero() {
		return "owner:" + owner.String()
	}
	return "ip:" + ClientIPKey(r)
}

// retryAfterSeconds rounds ttl up to whole seconds, at least 1.
func retryAfterSeconds(ttl, window time.Duration) int {
	if ttl <= 0 {
		ttl = window
	}
	secs := int(math.Ceil(ttl.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
