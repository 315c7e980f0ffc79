package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"shoplist/internal/pkg/cache"
)

// RateLimiter limits requests per client IP using a counter in the cache.
// Applied to the auth endpoints, which are the only anonymous writes.
func RateLimiter(client cache.Client, limit int, duration time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, _ := net.SplitHostPort(r.RemoteAddr)
			key := "rate-limit:" + ip
			ctx := context.Background()

			count, err := client.GetInt(ctx, key)
			if err == cache.ErrCacheMiss {
				client.Set(ctx, key, 1, duration)
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-1))
				next.ServeHTTP(w, r)
				return
			} else if err != nil {
				// Cache down: let the request through rather than lock
				// everyone out of login.
				next.ServeHTTP(w, r)
				return
			}

			if count >= limit {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			client.Incr(ctx, key)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count-1))
			next.ServeHTTP(w, r)
		})
	}
}
