// file: internal/middleware/rate_limiter.go
package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"referralhub/internal/response"
	"referralhub/internal/services"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds rate limiting configuration
type RateLimiterConfig struct {
	Enabled           bool          `json:"enabled"`
	RequestsPerSecond float64       `json:"requests_per_second"`
	Burst             int           `json:"burst"`
	IdleTTL           time.Duration `json:"idle_ttl"` // forget clients idle this long
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}

// DefaultRateLimiterConfig returns production-ready rate limiting configuration
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		Enabled:           true,
		RequestsPerSecond: 20,
		Burst:             40,
		IdleTTL:           10 * time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	config  *RateLimiterConfig
	clients map[string]*clientLimiter
	mu      sync.Mutex
	logger  *zap.Logger
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter and starts its idle-client cleanup
func NewRateLimiter(config *RateLimiterConfig, logger *zap.Logger) *RateLimiter {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rl := &RateLimiter{
		config:  config,
		clients: make(map[string]*clientLimiter),
		logger:  logger,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go rl.cleanupRoutine()
	}
	return rl
}

// RateLimit rejects requests over the per-client limit with 429
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !limiter.config.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			l := limiter.get(ip)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.config.Burst))
			if !l.Allow() {
				retryAfter := int(math.Ceil(1 / limiter.config.RequestsPerSecond))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				GetRequestLogger(r.Context()).Warn("Rate limit exceeded", zap.String("client_ip", ip))
				response.QuickError(w, r, services.NewRateLimitError("Too many requests, please try again later", map[string]interface{}{
					"retry_after_seconds": retryAfter,
				}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Allow reports whether the client may make another request now
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.get(ip).Allow()
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = rl.now()
	return c.limiter
}

func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupIdle()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanupIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.config.IdleTTL)
	removed := 0
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}
	if removed > 0 {
		rl.logger.Debug("Removed idle rate limit entries", zap.Int("count", removed))
	}
}

// clientIP uses RemoteAddr, which chi's RealIP has already rewritten from proxy headers
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
