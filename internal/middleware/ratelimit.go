package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/agenttrace/docstore/internal/pkg/errors"
	"github.com/agenttrace/docstore/internal/pkg/logger"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	// Max requests per window
	Max int
	// Window duration
	Window time.Duration
	// Key generator function
	KeyGenerator func(*fiber.Ctx) string
	// Skip function
	Skip func(*fiber.Ctx) bool
	// Custom limit exceeded handler
	LimitReached fiber.Handler
}

// DefaultRateLimitConfig returns default rate limit config
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Max:    100,
		Window: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Skip: HealthSkipper,
		LimitReached: func(c *fiber.Ctx) error {
			appErr := apperrors.RateLimited()
			return c.Status(appErr.StatusCode).JSON(fiber.Map{
				"code":    appErr.Code,
				"message": "Rate limit exceeded. Please try again later.",
			})
		},
	}
}

// RateLimitMiddleware limits requests per client with a sliding window kept
// in a Redis sorted set
type RateLimitMiddleware struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRateLimitMiddleware creates a new rate limit middleware. Unset fields of
// config take their defaults.
func NewRateLimitMiddleware(redisClient *redis.Client, config ...RateLimitConfig) *RateLimitMiddleware {
	defaults := DefaultRateLimitConfig()
	cfg := defaults
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Max <= 0 {
			cfg.Max = defaults.Max
		}
		if cfg.Window <= 0 {
			cfg.Window = defaults.Window
		}
		if cfg.KeyGenerator == nil {
			cfg.KeyGenerator = defaults.KeyGenerator
		}
		if cfg.LimitReached == nil {
			cfg.LimitReached = defaults.LimitReached
		}
	}

	return &RateLimitMiddleware{
		redis:  redisClient,
		config: cfg,
	}
}

// Handler returns the rate limit handler. Requests are let through when
// Redis is unreachable.
//
// Each request is added to the window and counted in one MULTI/EXEC block,
// so concurrent requests never see a count that misses one another.
func (m *RateLimitMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.config.Skip != nil && m.config.Skip(c) {
			return c.Next()
		}

		key := fmt.Sprintf("docstore:ratelimit:%s", m.config.KeyGenerator(c))
		now := time.Now()
		windowStart := now.Add(-m.config.Window).UnixMilli()
		reset := strconv.FormatInt(now.Add(m.config.Window).Unix(), 10)
		ctx := c.UserContext()

		member := fmt.Sprintf("%d:%s", now.UnixNano(), GetRequestID(c))

		pipe := m.redis.TxPipeline()
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart, 10))
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
		card := pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, m.config.Window*2)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}

		limit := strconv.Itoa(m.config.Max)
		remaining, ok := admit(card.Val(), m.config.Max)
		if !ok {
			// rejected requests do not hold a slot in the window
			if err := m.redis.ZRem(ctx, key, member).Err(); err != nil {
				logger.Warn("rate limiter cleanup failed", zap.Error(err))
			}

			c.Set("X-RateLimit-Limit", limit)
			c.Set("X-RateLimit-Remaining", "0")
			c.Set("X-RateLimit-Reset", reset)
			c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(int64(m.config.Window.Seconds()), 10))

			return m.config.LimitReached(c)
		}

		c.Set("X-RateLimit-Limit", limit)
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", reset)

		return c.Next()
	}
}

// admit reports whether a request is allowed given the window count that
// already includes it, and how many requests remain after it
func admit(count int64, limit int) (remaining int, ok bool) {
	if count > int64(limit) {
		return 0, false
	}
	return limit - int(count), true
}
