package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/bikeyard/internal/utils"
)

// RateLimitConfig configures the per-client-IP token bucket of the API.
type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int
	SweepInterval     time.Duration
	IdleTTL           time.Duration
	TrustProxy        bool             // resolve IP from proxy headers when true
	Now               func() time.Time // defaults to time.Now
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	c.Burst = max(c.Burst, 1)
	c.RefillPerIPPerMin = max(c.RefillPerIPPerMin, 1)
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	refilled time.Time
	seen     time.Time
}

// take refills the bucket up to capacity and spends one token if it can.
// On refusal it reports how many seconds until a token is available.
func (b *bucket) take(now time.Time, perSec, capacity float64) (ok bool, left, wait int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seen = now
	if dt := now.Sub(b.refilled).Seconds(); dt > 0 {
		b.tokens = math.Min(capacity, b.tokens+dt*perSec)
		b.refilled = now
	}
	if b.tokens < 1 {
		return false, 0, max(int(math.Ceil((1-b.tokens)/perSec)), 1)
	}
	b.tokens--
	return true, int(b.tokens), 0
}

type ipLimiter struct {
	cfg    RateLimitConfig
	perSec float64

	mu      sync.Mutex
	buckets map[string]*bucket
	swept   time.Time
}

func newIPLimiter(cfg RateLimitConfig) *ipLimiter {
	cfg = cfg.withDefaults()
	return &ipLimiter{
		cfg:     cfg,
		perSec:  float64(cfg.RefillPerIPPerMin) / 60,
		buckets: make(map[string]*bucket, 1024),
		swept:   cfg.Now(),
	}
}

// bucketFor returns the bucket of ip, evicting idle buckets on schedule or
// when the table is full.
func (l *ipLimiter) bucketFor(ip string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries
	if full || now.Sub(l.swept) >= l.cfg.SweepInterval {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.cfg.IdleTTL {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{tokens: float64(l.cfg.Burst), refilled: now, seen: now}
		l.buckets[ip] = b
	}
	return b
}

// RateLimit rejects a client IP with 429 and Retry-After once its bucket is empty.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newIPLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)
	capacity := float64(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := l.cfg.Now()
			ip := utils.ClientIP(r, l.cfg.TrustProxy)

			ok, left, wait := l.bucketFor(ip, now).take(now, l.perSec, capacity)

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(left))
			if !ok {
				h.Set("Retry-After", strconv.Itoa(wait))
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
