package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter is a sliding-window limit of requests per client IP.
type RateLimiter struct {
	rate      int
	interval  time.Duration
	ips       map[string][]time.Time
	lastPrune time.Time
	mu        sync.Mutex
}

func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		interval: interval,
		ips:      make(map[string][]time.Time),
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.interval)
	if now.Sub(rl.lastPrune) >= rl.interval {
		rl.pruneLocked(cutoff)
		rl.lastPrune = now
	}

	valid := rl.ips[ip][:0]
	for _, t := range rl.ips[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) >= rl.rate {
		rl.ips[ip] = valid
		return false
	}
	rl.ips[ip] = append(valid, now)
	return true
}

// pruneLocked forgets clients with no request inside the window.
func (rl *RateLimiter) pruneLocked(cutoff time.Time) {
	for ip, times := range rl.ips {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.ips, ip)
		}
	}
}

func (rl *RateLimiter) trackedClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.ips)
}

// strictLimiter keeps a token bucket per client IP. A bucket idle long
// enough to refill completely is evicted, since a new one is identical.
type strictLimiter struct {
	interval time.Duration
	burst    int
	idle     time.Duration

	mu        sync.Mutex
	limiters  map[string]*visitor
	lastPrune time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newStrictLimiter(interval time.Duration, burst int) *strictLimiter {
	return &strictLimiter{
		interval: interval,
		burst:    burst,
		idle:     interval * time.Duration(burst),
		limiters: make(map[string]*visitor),
	}
}

func (sl *strictLimiter) allow(ip string, now time.Time) bool {
	sl.mu.Lock()
	if now.Sub(sl.lastPrune) >= sl.idle {
		for key, v := range sl.limiters {
			if now.Sub(v.lastSeen) >= sl.idle {
				delete(sl.limiters, key)
			}
		}
		sl.lastPrune = now
	}
	v, ok := sl.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(sl.interval), sl.burst)}
		sl.limiters[ip] = v
	}
	v.lastSeen = now
	sl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// NewStrictRateLimiter guards the login endpoint with a token bucket per
// client IP: burst attempts, then one every interval.
func NewStrictRateLimiter(interval time.Duration, burst int) gin.HandlerFunc {
	sl := newStrictLimiter(interval, burst)
	return func(c *gin.Context) {
		if !sl.allow(c.ClientIP(), time.Now()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": "Too many attempts, please wait a moment",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
