package middlewares

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gopher0727/StudyConnect/internal/testutil"
	"github.com/Gopher0727/StudyConnect/internal/utils"
	"github.com/Gopher0727/StudyConnect/utils/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoami(c *gin.Context) {
	id, ok := UserID(c)
	if !ok {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id})
}

func do(r http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/", Identity(), whoami)

	w := do(r, "42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42}`, w.Body.String())

	for _, bad := range []string{"", "abc", "0", "-3"} {
		w := do(r, bad)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", bad)
		assert.Contains(t, w.Body.String(), UserIDHeader)
	}
}

func TestAsyncMiddleware(t *testing.T) {
	pool := utils.NewWorkerPool(2, 4, zap.NewNop())
	pool.Start()
	defer pool.Stop()

	r := gin.New()
	r.Use(AsyncMiddleware(pool))
	r.GET("/", Identity(), whoami)

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			w := do(r, "7")
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
	wg.Wait()
}

func TestAsyncMiddleware_StoppedPool(t *testing.T) {
	pool := utils.NewWorkerPool(1, 1, zap.NewNop())
	pool.Start()
	pool.Stop()

	r := gin.New()
	r.Use(AsyncMiddleware(pool))
	r.GET("/", whoami)

	assert.Equal(t, http.StatusServiceUnavailable, do(r, "").Code)
}

func TestAsyncMiddleware_StopFinishesQueuedRequests(t *testing.T) {
	pool := utils.NewWorkerPool(1, 4, zap.NewNop())
	pool.Start()

	entered := make(chan struct{})
	release := make(chan struct{})
	r := gin.New()
	r.Use(AsyncMiddleware(pool))
	r.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})
	r.GET("/", Identity(), whoami)

	codes := make(chan int, 2)
	go func() {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
		codes <- w.Code
	}()
	<-entered
	go func() { codes <- do(r, "3").Code }()
	time.Sleep(50 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()
	close(release)

	for range 2 {
		select {
		case code := <-codes:
			assert.Equal(t, http.StatusOK, code)
		case <-time.After(2 * time.Second):
			t.Fatal("queued request never completed")
		}
	}
	<-stopped
}

func TestAsyncMiddleware_NilPoolRunsInline(t *testing.T) {
	r := gin.New()
	r.Use(AsyncMiddleware(nil))
	r.GET("/", Identity(), whoami)

	assert.Equal(t, http.StatusOK, do(r, "1").Code)
}

func TestRateLimit(t *testing.T) {
	client, _ := testutil.NewRedis(t)
	now := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewFixedWindowLimiter(client, zap.NewNop(), false, ratelimit.WithClock(func() time.Time { return now }))

	r := gin.New()
	r.GET("/", Identity(), RateLimit(limiter, 2, time.Hour, UserKey("invite")), whoami)

	first := do(r, "5")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, do(r, "5").Code)

	limited := do(r, "5")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "3600", limited.Header().Get("Retry-After"))

	// 其他用户有独立的计数
	assert.Equal(t, http.StatusOK, do(r, "6").Code)
}

func TestRateLimit_RedisDownFailsClosed(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	limiter := ratelimit.NewFixedWindowLimiter(client, zap.NewNop(), false)
	mr.Close()

	r := gin.New()
	r.GET("/", Identity(), RateLimit(limiter, 2, time.Hour, UserKey("invite")), whoami)

	assert.Equal(t, http.StatusServiceUnavailable, do(r, "5").Code)
}

func TestMaxConcurrency(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	r := gin.New()
	r.Use(MaxConcurrency(1))
	r.GET("/", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})

	var first *httptest.ResponseRecorder
	var wg sync.WaitGroup
	wg.Go(func() { first = do(r, "") })

	<-entered
	assert.Equal(t, http.StatusServiceUnavailable, do(r, "").Code)
	close(release)
	wg.Wait()
	require.NotNil(t, first)
	assert.Equal(t, http.StatusOK, first.Code)
}
