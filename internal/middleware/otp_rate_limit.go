package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// OTPRateLimit caps request-otp calls per phone number (or client IP when the
// body has none). Redis holds the counters when available; otherwise each
// process keeps its own token buckets. A non-positive limit disables it.
func OTPRateLimit(cache redis.UniversalClient, perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if cache == nil {
		return newLocalLimiter(perMinute).handler()
	}
	return func(c *fiber.Ctx) error {
		key := "rl:otp:" + rateKey(c)
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(perMinute) {
			return fiber.NewError(http.StatusTooManyRequests, "too many OTP requests, try again later")
		}
		return c.Next()
	}
}

func rateKey(c *fiber.Ctx) string {
	var req struct {
		PhoneNumber string `json:"phone_number"`
	}
	_ = c.BodyParser(&req)
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		return phone
	}
	return c.IP()
}

const (
	limiterIdleTTL     = 5 * time.Minute
	limiterSweepPeriod = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type localLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newLocalLimiter(perMinute int) *localLimiter {
	return &localLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(float64(perMinute) / 60.0),
		burst:     perMinute,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// allow reports whether key may proceed. Visitors idle for limiterIdleTTL are
// dropped on the next sweep; by then their bucket has refilled anyway.
func (l *localLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepPeriod {
		cutoff := now.Add(-limiterIdleTTL)
		for k, v := range l.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *localLimiter) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *localLimiter) handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.allow(rateKey(c)) {
			return fiber.NewError(http.StatusTooManyRequests, "too many OTP requests, try again later")
		}
		return c.Next()
	}
}
