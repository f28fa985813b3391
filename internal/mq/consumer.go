package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Gopher0727/StudyConnect/config"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
)

// Sink 接收从 Kafka 消费到的投递消息
type Sink interface {
	DeliverAssignment(ctx context.Context, msg AssignmentMessage) error
	DeliverInvitation(ctx context.Context, msg InvitationMessage) error
}

// ErrMalformed 消息无法解析或主题未知，不重试
var ErrMalformed = errors.New("mq: malformed message")

// Consumer 订阅通知和邀请两个主题，把消息交给 Sink
type Consumer struct {
	group      sarama.ConsumerGroup
	topics     config.TopicsConfig
	sink       Sink
	log        *logger.Logger
	maxRetries int
	backoff    time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewConsumer(cfg *config.KafkaConfig, sink Sink, log *logger.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer group: %w", err)
	}
	return newConsumer(group, cfg, sink, log), nil
}

func newConsumer(group sarama.ConsumerGroup, cfg *config.KafkaConfig, sink Sink, log *logger.Logger) *Consumer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Consumer{
		group:      group,
		topics:     cfg.Topics,
		sink:       sink,
		log:        log,
		maxRetries: cfg.MaxRetries,
		backoff:    100 * time.Millisecond,
	}
}

// Start 在后台循环消费，直到 ctx 结束或调用 Stop
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	topics := []string{c.topics.Notifications, c.topics.Invitations}

	c.wg.Go(func() {
		for {
			if err := c.group.Consume(ctx, topics, c); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.log.Error("kafka 消费出错", zap.Error(err))
			}
			if ctx.Err() != nil {
				return
			}
		}
	})
}

func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer group: %w", err)
	}
	return nil
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim 逐条投递，投递失败重试后仍失败只记录日志，位点照常提交
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := c.dispatchWithRetry(ctx, message); err != nil {
				c.log.Error("投递消息失败",
					zap.String("topic", message.Topic),
					zap.Int32("partition", message.Partition),
					zap.Int64("offset", message.Offset),
					zap.Error(err),
				)
			}
			session.MarkMessage(message, "")
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) dispatchWithRetry(ctx context.Context, message *sarama.ConsumerMessage) error {
	backoff := c.backoff
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.Dispatch(ctx, message)
		if err == nil || errors.Is(err, ErrMalformed) {
			return err
		}
		lastErr = err

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// Dispatch 按主题解码一条消息并交给 Sink
func (c *Consumer) Dispatch(ctx context.Context, message *sarama.ConsumerMessage) error {
	switch message.Topic {
	case c.topics.Notifications:
		var msg AssignmentMessage
		if err := json.Unmarshal(message.Value, &msg); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return c.sink.DeliverAssignment(ctx, msg)
	case c.topics.Invitations:
		var msg InvitationMessage
		if err := json.Unmarshal(message.Value, &msg); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return c.sink.DeliverInvitation(ctx, msg)
	default:
		return fmt.Errorf("%w: unknown topic %q", ErrMalformed, message.Topic)
	}
}
