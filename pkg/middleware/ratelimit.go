package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"instamakaan/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client IP and drops buckets that
// were idle for limiterIdleTTL.
type ipLimiter struct {
	mu          sync.Mutex
	clients     map[string]*clientLimiter
	rate        rate.Limit
	burst       int
	lastCleanup time.Time
}

func (l *ipLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) > limiterIdleTTL {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(l.clients, k)
			}
		}
		l.lastCleanup = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// RateLimit allows config.Requests per config.Window per client IP.
func RateLimit(config utils.RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	if config.Requests <= 0 || config.Window() <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	burst := config.Burst
	if burst <= 0 {
		burst = config.Requests
	}

	l := &ipLimiter{
		clients:     make(map[string]*clientLimiter),
		rate:        rate.Limit(float64(config.Requests) / config.Window().Seconds()),
		burst:       burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			limiter := l.get(ip, time.Now())

			if !limiter.Allow() {
				reservation := limiter.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				retryAfter := max(int(delay.Seconds()), 1)
				logger.Warn("Rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path),
					zap.Int("retry_after", retryAfter))
				utils.ResponseTooManyRequests(w, "Too many requests", retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
