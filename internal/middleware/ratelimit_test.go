package middleware

import (
	"context"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenttrace/docstore/internal/pkg/id"
)

func TestAdmit(t *testing.T) {
	tests := []struct {
		name      string
		count     int64
		limit     int
		remaining int
		ok        bool
	}{
		{"first request", 1, 3, 2, true},
		{"last slot", 3, 3, 0, true},
		{"one over", 4, 3, 0, false},
		{"single slot window", 1, 1, 0, true},
		{"single slot taken", 2, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining, ok := admit(tt.count, tt.limit)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.remaining, remaining)
		})
	}
}

func TestRateLimitMiddleware_ConcurrentRequests(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	const limit, requests = 5, 25
	clientKey := id.NewUUID()
	t.Cleanup(func() { client.Del(context.Background(), "docstore:ratelimit:"+clientKey) })

	app := fiber.New()
	app.Use(RequestID())
	app.Use(NewRateLimitMiddleware(client, RateLimitConfig{
		Max:          limit,
		Window:       time.Minute,
		KeyGenerator: func(*fiber.Ctx) string { return clientKey },
	}).Handler())
	app.Get("/v1/ids", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	var allowed, limited atomic.Int32
	var wg sync.WaitGroup
	for range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := app.Test(httptest.NewRequest("GET", "/v1/ids", nil), 5000)
			if !assert.NoError(t, err) {
				return
			}
			switch resp.StatusCode {
			case fiber.StatusOK:
				allowed.Add(1)
			case fiber.StatusTooManyRequests:
				limited.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(limit), allowed.Load())
	assert.Equal(t, int32(requests-limit), limited.Load())

	n, err := client.ZCard(context.Background(), "docstore:ratelimit:"+clientKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(limit), n)
}
