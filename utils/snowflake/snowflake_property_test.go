package snowflake

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_CodesAreUnique(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all generated codes are unique", prop.ForAll(
		func(count int) bool {
			g, err := NewGenerator(Config{WorkerID: 1})
			if err != nil {
				return false
			}
			codes := make(map[string]bool)
			for range count {
				code, err := g.NextCode()
				if err != nil || codes[code] {
					return false
				}
				codes[code] = true
			}
			return len(codes) == count
		},
		gen.IntRange(100, 1000),
	))

	properties.Property("IDs from different workers never collide", prop.ForAll(
		func(w1, w2 int64, count int) bool {
			if w1 == w2 {
				return true
			}
			g1, _ := NewGenerator(Config{WorkerID: w1})
			g2, _ := NewGenerator(Config{WorkerID: w2})
			ids := make(map[int64]bool)
			for range count {
				a, err1 := g1.NextID()
				b, err2 := g2.NextID()
				if err1 != nil || err2 != nil || ids[a] || ids[b] || a == b {
					return false
				}
				ids[a], ids[b] = true, true
			}
			return true
		},
		gen.Int64Range(0, MaxWorkerID),
		gen.Int64Range(0, MaxWorkerID),
		gen.IntRange(10, 200),
	))

	properties.Property("parse recovers the worker ID", prop.ForAll(
		func(worker int64) bool {
			g, err := NewGenerator(Config{WorkerID: worker})
			if err != nil {
				return false
			}
			id, err := g.NextID()
			if err != nil {
				return false
			}
			_, got, _ := g.Parse(id)
			return got == worker
		},
		gen.Int64Range(0, MaxWorkerID),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
