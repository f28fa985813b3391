package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/middlewares"
)

const (
	reasonBadBody  = "Invalid request body"
	reasonBadID    = "Invalid id"
	reasonInternal = "Internal server error"
	reasonNoUser   = "Missing or invalid " + middlewares.UserIDHeader
)

// statusOf 把错误类别映射为 HTTP 状态码
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindParse:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindPermission:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindDelivery:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func success(c *gin.Context, status int, reason string, data any) {
	c.JSON(status, gin.H{
		"code":    0,
		"message": reason,
		"data":    data,
	})
}

// fail 输出错误原因；未分类的错误不向客户端暴露细节
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusOf(err)
	reason := apperr.ReasonOf(err)
	if reason == "" {
		reason = reasonInternal
	}
	c.AbortWithStatusJSON(status, gin.H{
		"code":  status,
		"error": reason,
	})
}

func badRequest(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"code":  http.StatusBadRequest,
		"error": reason,
	})
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, reasonBadID)
		return 0, false
	}
	return uint(id), true
}

// currentUser 读取 Identity 中间件写入的用户 ID
func currentUser(c *gin.Context) (uint, bool) {
	id, ok := middlewares.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":  http.StatusUnauthorized,
			"error": reasonNoUser,
		})
		return 0, false
	}
	return id, true
}
