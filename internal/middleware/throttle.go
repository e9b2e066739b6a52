package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/GunarsK-portfolio/voting-portal/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const loginThrottlePrefix = "login_throttle:"

// fixedWindowLua increments the counter and makes sure it carries an expiry,
// returning {count, remaining ms}.
const fixedWindowLua = `
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
  redis.call("PEXPIRE", KEYS[1], ttl)
end
return {count, ttl}
`

var fixedWindow = redis.NewScript(fixedWindowLua)

// LoginThrottle limits attempts per client IP to limit per window using a
// Redis fixed-window counter. Redis failures let the request through.
func LoginThrottle(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("%s%s", loginThrottlePrefix, c.ClientIP())

		count, remaining, err := hitWindow(ctx, rdb, key, window)
		if err != nil {
			logger.Warn("login throttle unavailable", zap.Error(err))
			c.Next()
			return
		}

		if count > int64(limit) {
			retry := remaining
			if retry < time.Second {
				retry = time.Second
			}
			metrics.LoginAttempts.WithLabelValues(metrics.ResultThrottled).Inc()
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many login attempts. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

func hitWindow(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, time.Duration, error) {
	values, err := fixedWindow.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to run login throttle script: %w", err)
	}
	if len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected login throttle reply %v", values)
	}
	return values[0], time.Duration(values[1]) * time.Millisecond, nil
}
