package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/artem13815/contacts/api/http/presenter"
)

// RateLimitConfig describes a per-IP token bucket.
type RateLimitConfig struct {
	PerMinute int           // sustained requests per minute; <= 0 disables limiting
	CacheSize int           // IPs kept in memory
	EntryTTL  time.Duration // idle time after which an IP is forgotten
}

// NewRateLimitPerIP limits requests per client IP. Limiters live in an
// expirable LRU, so idle clients are dropped without a janitor of our own.
func NewRateLimitPerIP(cfg RateLimitConfig) fiber.Handler {
	if cfg.PerMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 10_000
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = 2 * time.Minute
	}

	every := rate.Every(time.Minute / time.Duration(cfg.PerMinute))
	visitors := expirable.NewLRU[string, *rate.Limiter](cfg.CacheSize, nil, cfg.EntryTTL)
	var mu sync.Mutex

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		lim, ok := visitors.Get(ip)
		if !ok {
			lim = rate.NewLimiter(every, cfg.PerMinute)
			visitors.Add(ip, lim)
		}
		return lim
	}

	return func(c *fiber.Ctx) error {
		if !limiterFor(c.IP()).Allow() {
			c.Set(fiber.HeaderRetryAfter, "60")
			return presenter.Error(c, http.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
