package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"virs-challenge/backend/pkg/redis"
	"virs-challenge/backend/pkg/response"
)

// Limiter 限流计数接口，由 pkg/redis.Client 实现
type Limiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// 已认证请求按 user_id 计数，匿名请求按客户端 IP 计数
// rdb 为 nil 或 Redis 出错时降级放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	// nil 指针不能直接装入接口，否则判空失效
	if rdb == nil {
		return rateLimitWith(nil, limit, window, logger)
	}
	return rateLimitWith(rdb, limit, window, logger)
}

func rateLimitWith(limiter Limiter, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		subject := c.GetString("user_id")
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		key := fmt.Sprintf("%s:%s:%s", c.Request.Method, c.FullPath(), subject)

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流检查失败，降级放行", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
