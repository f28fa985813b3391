package logger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Gopher0727/StudyConnect/config"
)

func newObserved(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return Wrap(zap.New(core)), logs
}

func TestNewLogger(t *testing.T) {
	t.Run("json to stdout", func(t *testing.T) {
		l, err := NewLogger(&config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		l.Info("hello")
		assert.NoError(t, l.Close())
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := NewLogger(&config.LoggingConfig{Level: "debug", Format: "json", Output: "file", FilePath: path})
		require.NoError(t, err)

		l.Info("written to file", zap.String("k", "v"))
		require.NoError(t, l.Close())

		content, err := os.ReadFile(path)
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(content))), &entry))
		assert.Equal(t, "written to file", entry["message"])
		assert.Equal(t, "v", entry["k"])
	})

	t.Run("unwritable file", func(t *testing.T) {
		_, err := NewLogger(&config.LoggingConfig{Output: "file", FilePath: filepath.Join(t.TempDir(), "missing", "x.log")})
		assert.Error(t, err)
	})
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"unknown": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestContextLogging(t *testing.T) {
	l, logs := newObserved(zapcore.DebugLevel)

	ctx := WithTraceID(context.Background(), "trace-1")
	l.InfoContext(ctx, "with trace")
	l.WarnContext(context.Background(), "without trace")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "trace-1", entries[0].ContextMap()["trace_id"])
	_, ok := entries[1].ContextMap()["trace_id"]
	assert.False(t, ok)
}

func TestWithFields(t *testing.T) {
	l, logs := newObserved(zapcore.InfoLevel)
	l.WithFields(zap.Uint("group_id", 7)).WithTraceID("t").Info("chained")

	entry := logs.All()[0]
	assert.EqualValues(t, 7, entry.ContextMap()["group_id"])
	assert.Equal(t, "t", entry.ContextMap()["trace_id"])
}

func TestTraceIDContext(t *testing.T) {
	ctx := WithTraceID(context.Background(), "")
	assert.Len(t, GetTraceID(ctx), 36)

	assert.Equal(t, "abc", GetTraceID(WithTraceID(context.Background(), "abc")))
	assert.Empty(t, GetTraceID(context.Background()))
	assert.NotEqual(t, NewTraceID(), NewTraceID())
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, logs := newObserved(zapcore.InfoLevel)

	r := gin.New()
	r.Use(GinMiddleware(l))
	r.GET("/ok", func(c *gin.Context) {
		assert.Equal(t, "req-42", GetTraceID(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.EqualValues(t, http.StatusNoContent, entries[0].ContextMap()["status"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}
