package api

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/listenupapp/catalog-server/internal/http/response"
	"github.com/listenupapp/catalog-server/internal/ratelimit"
)

// RateLimitMiddleware limits mutating requests (POST, PUT, PATCH, DELETE)
// per client IP. Reads are never limited. Returns 429 with Retry-After when
// the client's bucket is empty.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isWrite(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			if ok, retryAfter := limiter.Allow(key); !ok {
				logger.Warn("rate limit exceeded",
					"ip", key,
					"method", r.Method,
					"path", r.URL.Path,
					"retry_after", retryAfter,
				)
				response.TooManyRequests(w, retryAfter, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// clientIP returns the host part of RemoteAddr. middleware.RealIP has
// already replaced it with X-Forwarded-For or X-Real-IP when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
