package snowflake

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name     string
		workerID int64
		wantErr  error
	}{
		{"zero worker", 0, nil},
		{"max worker", MaxWorkerID, nil},
		{"too large", MaxWorkerID + 1, ErrInvalidWorkerID},
		{"negative", -1, ErrInvalidWorkerID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGenerator(Config{WorkerID: tt.workerID})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, g)
		})
	}
}

func TestGenerator_Parse(t *testing.T) {
	fixed := time.UnixMilli(Epoch + 123456)
	g, err := NewGenerator(Config{WorkerID: 7, Now: func() time.Time { return fixed }})
	require.NoError(t, err)

	first, err := g.NextID()
	require.NoError(t, err)
	second, err := g.NextID()
	require.NoError(t, err)

	ts, worker, seq := g.Parse(first)
	assert.Equal(t, fixed.UnixMilli(), ts)
	assert.Equal(t, int64(7), worker)
	assert.Equal(t, int64(0), seq)

	_, _, seq = g.Parse(second)
	assert.Equal(t, int64(1), seq)
}

func TestGenerator_ClockMovedBackwards(t *testing.T) {
	now := time.UnixMilli(Epoch + 10_000)
	g, err := NewGenerator(Config{Now: func() time.Time { return now }})
	require.NoError(t, err)

	_, err = g.NextID()
	require.NoError(t, err)

	now = now.Add(-time.Second)
	_, err = g.NextID()
	assert.ErrorIs(t, err, ErrClockMovedBackwards)
}

func TestGenerator_SequenceOverflowWaits(t *testing.T) {
	var ms atomic.Int64
	ms.Store(Epoch + 1)
	var calls atomic.Int64
	g, err := NewGenerator(Config{Now: func() time.Time {
		// advance the clock once the sequence space is used up
		if calls.Add(1) > sequenceMask+2 {
			ms.Store(Epoch + 2)
		}
		return time.UnixMilli(ms.Load())
	}})
	require.NoError(t, err)

	seen := make(map[int64]bool)
	for range sequenceMask + 2 {
		id, err := g.NextID()
		require.NoError(t, err)
		require.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, sequenceMask+2)
}

func TestGenerator_NextCode(t *testing.T) {
	g, err := NewGenerator(Config{WorkerID: 1})
	require.NoError(t, err)

	code, err := g.NextCode()
	require.NoError(t, err)
	assert.Equal(t, strings.ToUpper(code), code)

	id, err := strconv.ParseInt(code, 36, 64)
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestGenerator_Concurrent(t *testing.T) {
	g, err := NewGenerator(Config{WorkerID: 3})
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		ids = make(map[int64]struct{})
	)
	for range 8 {
		wg.Go(func() {
			for range 500 {
				id, err := g.NextID()
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				ids[id] = struct{}{}
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	assert.Len(t, ids, 8*500)
}
