package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apierrors "github.com/chybatronik/goUserFilter/internal/errors"
	"github.com/chybatronik/goUserFilter/internal/logging"
)

const (
	visitorCleanupInterval = 5 * time.Minute
	visitorIdleTimeout     = 10 * time.Minute
)

// RateLimiter implements IP-based rate limiting for security
type RateLimiter struct {
	visitors map[string]*Visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// Visitor tracks rate limiting state for a single IP
type Visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerSecond per IP with the given burst. A zero
// rate disables limiting.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*Visitor),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// SecurityRateLimit creates the per-IP rate limiting middleware. Idle visitors
// are evicted until ctx is done.
func SecurityRateLimit(ctx context.Context, logger *logging.Logger, ew *apierrors.Writer, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	if ew == nil {
		ew = apierrors.NewWriter(logger)
	}

	limiter := NewRateLimiter(requestsPerSecond, burst)
	go limiter.cleanupVisitors(ctx)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := extractIP(r)
			if ip == "" {
				logger.Warn("rate limiting: unable to extract client IP", "remote_addr", r.RemoteAddr)
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(ip) {
				logger.WithRequestID(GetRequestID(r.Context())).Warn("rate limit exceeded", "ip", ip)
				ew.WriteRateLimitError(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Allow checks if an IP is allowed to make a request
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.rate == 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	visitor, exists := rl.visitors[ip]
	if !exists {
		visitor = &Visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = visitor
	}
	visitor.lastSeen = time.Now()
	return visitor.limiter.Allow()
}

// Visitors returns the number of tracked IPs
func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

func (rl *RateLimiter) cleanupVisitors(ctx context.Context) {
	ticker := time.NewTicker(visitorCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.evictIdle(now.Add(-visitorIdleTimeout))
		}
	}
}

// evictIdle drops visitors last seen before cutoff
func (rl *RateLimiter) evictIdle(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, visitor := range rl.visitors {
		if visitor.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// extractIP extracts the real client IP from request
func extractIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); isValidIP(ip) {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); isValidIP(xri) {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if isValidIP(host) {
		return host
	}
	return ""
}

// isValidIP checks if the string is a valid IP address
func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
