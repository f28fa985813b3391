package mq

import (
	"strconv"
	"sync"

	"github.com/IBM/sarama"

	"github.com/Gopher0727/StudyConnect/utils/consistenthash"
)

const ringReplicas = 64

// ringPartitioner 按消息 key（收件人邮箱）在一致性哈希环上选择分区，
// 同一收件人的通知落在同一分区上保持顺序，扩容分区时只有少量收件人迁移。
type ringPartitioner struct {
	mu       sync.Mutex
	ring     *consistenthash.Ring
	size     int32
	fallback sarama.Partitioner
}

func newRingPartitioner(topic string) sarama.Partitioner {
	return &ringPartitioner{fallback: sarama.NewRandomPartitioner(topic)}
}

func (p *ringPartitioner) Partition(msg *sarama.ProducerMessage, numPartitions int32) (int32, error) {
	if msg.Key == nil {
		return p.fallback.Partition(msg, numPartitions)
	}
	key, err := msg.Key.Encode()
	if err != nil {
		return -1, err
	}

	owner := p.ringFor(numPartitions).Get(key)
	partition, err := strconv.ParseInt(owner, 10, 32)
	if err != nil {
		return -1, sarama.ErrInvalidPartition
	}
	return int32(partition), nil
}

// ringFor 分区数变化时增量调整哈希环
func (p *ringPartitioner) ringFor(numPartitions int32) *consistenthash.Ring {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ring == nil {
		p.ring = consistenthash.New(ringReplicas, nil)
	}
	for i := p.size; i < numPartitions; i++ {
		p.ring.Add(strconv.Itoa(int(i)))
	}
	for i := numPartitions; i < p.size; i++ {
		p.ring.Remove(strconv.Itoa(int(i)))
	}
	p.size = numPartitions
	return p.ring
}

func (p *ringPartitioner) RequiresConsistency() bool {
	return true
}
