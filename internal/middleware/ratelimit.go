package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	RateLimitHeader          = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RateLimitResetHeader     = "X-RateLimit-Reset"
	RetryAfterHeader         = "Retry-After"
)

// fixed window: GET, refuse at limit, INCR, EXPIRE on the first hit
var rateLimitScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = tonumber(redis.call("GET", key) or "0")
	if current >= limit then
		return {0, 0, redis.call("TTL", key)}
	end

	current = redis.call("INCR", key)
	if current == 1 then
		redis.call("EXPIRE", key, window)
	end
	return {1, limit - current, redis.call("TTL", key)}
`)

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	// KeyFunc extracts the client key. Defaults to client IP plus route.
	KeyFunc func(*gin.Context) string
}

// RateLimiter throttles the code-sending and anonymous-send endpoints. Counts
// live in Redis when a client is configured, otherwise in process memory.
type RateLimiter struct {
	config RateLimitConfig
	redis  *redis.Client
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	localMap map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	count     int
	resetTime time.Time
}

func NewRateLimiter(config RateLimitConfig, redisClient *redis.Client, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string {
			return c.FullPath() + "|" + c.ClientIP()
		}
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	return &RateLimiter{
		config:   config,
		redis:    redisClient,
		logger:   logger.Named("ratelimit"),
		now:      time.Now,
		localMap: make(map[string]*rateLimitEntry),
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.Requests <= 0 {
			c.Next()
			return
		}
		key := rl.config.KeyFunc(c)

		allowed, remaining, resetTime, err := rl.checkAndUpdate(c.Request.Context(), key)
		if err != nil {
			// fail open
			rl.logger.Error("rate limit check failed", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		c.Header(RateLimitHeader, strconv.Itoa(rl.config.Requests))
		c.Header(RateLimitRemainingHeader, strconv.Itoa(remaining))
		c.Header(RateLimitResetHeader, strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int64(resetTime.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header(RetryAfterHeader, strconv.FormatInt(retryAfter, 10))
			rl.logger.Info("rate limit exceeded", zap.String("key", key))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, try again later",
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) checkAndUpdate(ctx context.Context, key string) (bool, int, time.Time, error) {
	if rl.redis != nil {
		return rl.checkAndUpdateRedis(ctx, key)
	}
	allowed, remaining, reset := rl.checkAndUpdateLocal(key)
	return allowed, remaining, reset, nil
}

func (rl *RateLimiter) checkAndUpdateRedis(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowSeconds := int(rl.config.Window.Seconds())
	if windowSeconds < 1 {
		windowSeconds = 1
	}

	values, err := rateLimitScript.Run(ctx, rl.redis, []string{"ratelimit:" + key}, rl.config.Requests, windowSeconds).Int64Slice()
	if err != nil {
		return false, 0, time.Time{}, err
	}
	if len(values) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("unexpected redis response: %v", values)
	}

	resetTime := rl.now().Add(time.Duration(values[2]) * time.Second)
	return values[0] == 1, int(values[1]), resetTime, nil
}

func (rl *RateLimiter) checkAndUpdateLocal(key string) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if len(rl.localMap) > 1000 {
		for k, entry := range rl.localMap {
			if now.After(entry.resetTime) {
				delete(rl.localMap, k)
			}
		}
	}

	entry, ok := rl.localMap[key]
	if !ok || now.After(entry.resetTime) {
		entry = &rateLimitEntry{resetTime: now.Add(rl.config.Window)}
		rl.localMap[key] = entry
	}
	if entry.count >= rl.config.Requests {
		return false, 0, entry.resetTime
	}
	entry.count++
	return true, rl.config.Requests - entry.count, entry.resetTime
}
