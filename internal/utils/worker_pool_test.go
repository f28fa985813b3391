package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWorkerPool_RunsJobs(t *testing.T) {
	pool := NewWorkerPool(4, 16, zap.NewNop())
	pool.Start()
	defer pool.Stop()

	var (
		wg    sync.WaitGroup
		count atomic.Int64
	)
	for range 100 {
		wg.Add(1)
		require.NoError(t, pool.Submit(context.Background(), func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int64(100), count.Load())
}

func TestWorkerPool_RecoversPanic(t *testing.T) {
	pool := NewWorkerPool(1, 1, nil)
	pool.Start()
	defer pool.Stop()

	require.NoError(t, pool.Submit(context.Background(), func() { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking job")
	}
}

func TestWorkerPool_SubmitHonoursContext(t *testing.T) {
	pool := NewWorkerPool(1, 0, zap.NewNop())
	// not started: nobody drains the unbuffered queue

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(2, 4, zap.NewNop())
	pool.Start()
	pool.Stop()
	pool.Stop()

	assert.ErrorIs(t, pool.Submit(context.Background(), func() {}), ErrPoolStopped)
	assert.Equal(t, 2, pool.Size())
}

func TestWorkerPool_StopRunsQueuedJobs(t *testing.T) {
	pool := NewWorkerPool(1, 8, zap.NewNop())
	pool.Start()

	release := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), func() { <-release }))

	var ran atomic.Int64
	for range 5 {
		require.NoError(t, pool.Submit(context.Background(), func() { ran.Add(1) }))
	}

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()
	close(release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Equal(t, int64(5), ran.Load())
}

func TestWorkerPool_StopWithoutStartRunsQueuedJobs(t *testing.T) {
	pool := NewWorkerPool(1, 2, zap.NewNop())
	var ran atomic.Int64
	require.NoError(t, pool.Submit(context.Background(), func() { ran.Add(1) }))
	require.NoError(t, pool.Submit(context.Background(), func() { ran.Add(1) }))

	pool.Stop()
	assert.Equal(t, int64(2), ran.Load())
}
