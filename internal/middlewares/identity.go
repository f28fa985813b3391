package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader 由上游网关写入的当前用户 ID
	UserIDHeader = "X-User-ID"
	userIDKey    = "user_id"
)

// Identity 从请求头读取当前用户，缺失或非法时返回 401
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
		id, err := strconv.ParseUint(raw, 10, 64)
		if raw == "" || err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  http.StatusUnauthorized,
				"error": "Missing or invalid " + UserIDHeader,
			})
			return
		}
		c.Set(userIDKey, uint(id))
		c.Next()
	}
}

// UserID 返回 Identity 写入的用户 ID
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
