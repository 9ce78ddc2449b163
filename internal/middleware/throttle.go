package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPThrottle keeps an in-process token bucket per client IP
type IPThrottle struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewIPThrottle allows perMinute requests per IP with the given burst
func NewIPThrottle(perMinute, burst int) *IPThrottle {
	if perMinute <= 0 {
		perMinute = 30
	}
	if burst <= 0 {
		burst = 1
	}
	return &IPThrottle{
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		visitors: make(map[string]*visitor),
	}
}

func (t *IPThrottle) visitor(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, exists := t.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Sweep forgets visitors idle for longer than maxIdle
func (t *IPThrottle) Sweep(maxIdle time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for ip, v := range t.visitors {
		if time.Since(v.lastSeen) > maxIdle {
			delete(t.visitors, ip)
		}
	}
}

// Run sweeps idle visitors every interval until ctx is done
func (t *IPThrottle) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sweep(5 * interval)
		}
	}
}

// Middleware rejects requests over the per-IP rate with 429
func (t *IPThrottle) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			limiter := t.visitor(ip)

			if !limiter.Allow() {
				logger.Warn("Throttled request", zap.String("ip", ip), zap.String("path", r.URL.Path))
				retry := time.Duration(float64(time.Second) / float64(t.limit))
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				RespondWithError(w, http.StatusTooManyRequests, "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
