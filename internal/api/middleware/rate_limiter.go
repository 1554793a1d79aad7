package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/veridion-labs/facegate/internal/domain"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	// Max requests per window
	Max int
	// Window duration
	Window time.Duration
	// Key generator function - defaults to the client IP
	KeyGenerator func(c *fiber.Ctx) string
}

// DefaultRateLimiterConfig limits each client IP. Biometric attempts
// are camera-paced, so a legitimate client stays far under this.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Max:    60,
		Window: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}
}

// clientWindow tracks rate limiting state for one key
type clientWindow struct {
	count      int
	windowEnd  time.Time
	lastAccess time.Time
}

// RateLimiter implements fixed-window rate limiting keyed per client
type RateLimiter struct {
	config  RateLimiterConfig
	windows map[string]*clientWindow
	mu      sync.Mutex
	done    chan struct{}
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Max == 0 {
		config.Max = DefaultRateLimiterConfig().Max
	}
	if config.Window == 0 {
		config.Window = DefaultRateLimiterConfig().Window
	}
	if config.KeyGenerator == nil {
		config.KeyGenerator = DefaultRateLimiterConfig().KeyGenerator
	}

	rl := &RateLimiter{
		config:  config,
		windows: make(map[string]*clientWindow),
		done:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// Handler returns the Fiber middleware handler
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := rl.config.KeyGenerator(c)
		if key == "" {
			return c.Next()
		}

		now := time.Now()

		rl.mu.Lock()
		window, exists := rl.windows[key]
		if !exists || now.After(window.windowEnd) {
			window = &clientWindow{windowEnd: now.Add(rl.config.Window)}
			rl.windows[key] = window
		}
		window.count++
		window.lastAccess = now
		count := window.count
		windowEnd := window.windowEnd
		rl.mu.Unlock()

		remaining := rl.config.Max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.config.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", windowEnd.Format(time.RFC3339))

		if count > rl.config.Max {
			c.Set("Retry-After", strconv.Itoa(int(time.Until(windowEnd).Seconds())))
			return domain.ErrRateLimited
		}

		return c.Next()
	}
}

// cleanup removes windows that have been idle for two full periods
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, window := range rl.windows {
				if now.Sub(window.lastAccess) > 2*rl.config.Window {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
