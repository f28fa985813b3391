package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/StudyConnect/internal/utils"
)

// AsyncMiddleware 把处理链提交到协程池执行，请求所在的 goroutine 阻塞等待结果。
// 队列满时排队等待；客户端断开或协程池停止时返回 503。
// pool 为 nil 时同步执行。
func AsyncMiddleware(pool *utils.WorkerPool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pool == nil {
			c.Next()
			return
		}

		// 同一时刻只有 worker 在操作 c，这里只等待 done
		done := make(chan struct{})
		task := func() {
			defer close(done)
			c.Next()
		}

		if err := pool.Submit(c.Request.Context(), task); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"code":  http.StatusServiceUnavailable,
				"error": "Server is busy, please retry",
			})
			return
		}
		<-done
	}
}
