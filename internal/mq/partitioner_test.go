package mq

import (
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingPartitioner_StablePerKey(t *testing.T) {
	p := newRingPartitioner("studyconnect.notifications")
	msg := &sarama.ProducerMessage{Key: sarama.StringEncoder("bob@example.com")}

	first, err := p.Partition(msg, 6)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, first, int32(0))
	assert.Less(t, first, int32(6))
	for range 5 {
		got, err := p.Partition(msg, 6)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
	assert.True(t, p.RequiresConsistency())
}

func TestRingPartitioner_GrowMovesKeysOnlyToNewPartitions(t *testing.T) {
	p := newRingPartitioner("studyconnect.notifications")

	before := make(map[string]int32)
	for i := range 200 {
		key := fmt.Sprintf("user%d@example.com", i)
		got, err := p.Partition(&sarama.ProducerMessage{Key: sarama.StringEncoder(key)}, 4)
		require.NoError(t, err)
		before[key] = got
	}

	for key, old := range before {
		got, err := p.Partition(&sarama.ProducerMessage{Key: sarama.StringEncoder(key)}, 6)
		require.NoError(t, err)
		if got != old {
			assert.GreaterOrEqual(t, got, int32(4), key)
		}
	}
}

func TestRingPartitioner_ShrinkStaysInRange(t *testing.T) {
	p := newRingPartitioner("studyconnect.invitations")
	msg := &sarama.ProducerMessage{Key: sarama.StringEncoder("carol@example.com")}

	_, err := p.Partition(msg, 8)
	require.NoError(t, err)
	got, err := p.Partition(msg, 2)
	require.NoError(t, err)
	assert.Less(t, got, int32(2))
}

func TestRingPartitioner_NilKeyFallsBack(t *testing.T) {
	p := newRingPartitioner("studyconnect.notifications")
	got, err := p.Partition(&sarama.ProducerMessage{}, 3)
	require.NoError(t, err)
	assert.Less(t, got, int32(3))
}
