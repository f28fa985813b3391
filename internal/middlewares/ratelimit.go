package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/StudyConnect/utils/ratelimit"
)

// RateLimit 按 keyFn 返回的键做固定窗口限流，超限返回 429。
// keyFn 返回空串或未配置限额时不限流。
func RateLimit(limiter ratelimit.Limiter, limit int, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 || window <= 0 {
			c.Next()
			return
		}
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"code":  http.StatusServiceUnavailable,
				"error": "Rate limiter unavailable",
			})
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":  http.StatusTooManyRequests,
				"error": "Too many requests",
			})
			return
		}
		if remaining, err := limiter.Remaining(c.Request.Context(), key, limit, window); err == nil {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}
		c.Next()
	}
}

// UserKey 以前缀加当前用户 ID 为限流键
func UserKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		id, ok := UserID(c)
		if !ok {
			return ""
		}
		return prefix + ":" + strconv.FormatUint(uint64(id), 10)
	}
}

// MaxConcurrency 限制同时处理的请求数，已满时直接返回 503
func MaxConcurrency(n int) gin.HandlerFunc {
	sem := make(chan struct{}, n)
	return func(c *gin.Context) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
			c.Next()
		default:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"code":  http.StatusServiceUnavailable,
				"error": "Too many concurrent requests",
			})
		}
	}
}
