// Package snowflake generates time ordered 63 bit IDs and short public codes
// derived from them.
package snowflake

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// Epoch is the custom epoch (January 1, 2024 00:00:00 UTC) in milliseconds.
	Epoch int64 = 1704067200000

	WorkerIDBits uint8 = 10
	SequenceBits uint8 = 12

	workerIDShift  = SequenceBits
	timestampShift = SequenceBits + WorkerIDBits
	sequenceMask   = -1 ^ (-1 << SequenceBits)
	MaxWorkerID    = -1 ^ (-1 << WorkerIDBits)
)

var (
	ErrInvalidWorkerID     = errors.New("worker ID exceeds maximum value")
	ErrClockMovedBackwards = errors.New("clock moved backwards")
)

type Config struct {
	Epoch    int64
	WorkerID int64
	// Now defaults to time.Now.
	Now func() time.Time
}

// Generator is safe for concurrent use.
type Generator struct {
	mu sync.Mutex

	epoch    int64
	workerID int64
	now      func() time.Time

	sequence      int64
	lastTimestamp int64
}

func NewGenerator(config Config) (*Generator, error) {
	if config.WorkerID < 0 || config.WorkerID > MaxWorkerID {
		return nil, ErrInvalidWorkerID
	}
	if config.Epoch == 0 {
		config.Epoch = Epoch
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Generator{
		epoch:    config.Epoch,
		workerID: config.WorkerID,
		now:      config.Now,
	}, nil
}

// NextID generates the next unique ID
func (g *Generator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	timestamp := g.currentTimestamp()
	if timestamp < g.lastTimestamp {
		return 0, ErrClockMovedBackwards
	}

	if timestamp == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & sequenceMask
		// sequence exhausted, wait for the next millisecond
		if g.sequence == 0 {
			timestamp = g.waitNextMillis(g.lastTimestamp)
		}
	} else {
		g.sequence = 0
	}
	g.lastTimestamp = timestamp

	id := ((timestamp - g.epoch) << timestampShift) |
		(g.workerID << workerIDShift) |
		g.sequence
	return id, nil
}

// NextCode returns the next ID in upper case base36, used as a public code.
func (g *Generator) NextCode() (string, error) {
	id, err := g.NextID()
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strconv.FormatInt(id, 36)), nil
}

func (g *Generator) currentTimestamp() int64 {
	return g.now().UnixMilli()
}

func (g *Generator) waitNextMillis(lastTimestamp int64) int64 {
	timestamp := g.currentTimestamp()
	for timestamp <= lastTimestamp {
		time.Sleep(100 * time.Microsecond)
		timestamp = g.currentTimestamp()
	}
	return timestamp
}

// Parse extracts timestamp (unix ms), worker ID and sequence from id.
func (g *Generator) Parse(id int64) (timestamp int64, workerID int64, sequence int64) {
	sequence = id & sequenceMask
	workerID = (id >> workerIDShift) & MaxWorkerID
	timestamp = (id >> timestampShift) + g.epoch
	return
}
