package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Gopher0727/StudyConnect/config"
	"github.com/Gopher0727/StudyConnect/internal/models"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
)

// KafkaNotifier 把任务分配通知和入组邀请发布到 Kafka。
// 发送失败时返回错误，由调用方回滚事务。
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topics   config.TopicsConfig
	now      func() time.Time
	log      *logger.Logger
}

func newSaramaConfig(cfg *config.KafkaConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = cfg.MaxRetries
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Partitioner = newRingPartitioner
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second
	saramaConfig.Metadata.Retry.Max = 3
	saramaConfig.Metadata.Retry.Backoff = 250 * time.Millisecond
	saramaConfig.Metadata.Timeout = 10 * time.Second
	return saramaConfig
}

// NewKafkaNotifier 连接配置中的 broker 并创建同步生产者
func NewKafkaNotifier(cfg *config.KafkaConfig, log *logger.Logger) (*KafkaNotifier, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, newSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaNotifierWithProducer(producer, cfg.Topics, log), nil
}

// NewKafkaNotifierWithProducer 使用已有的生产者，测试中传入 sarama/mocks
func NewKafkaNotifierWithProducer(producer sarama.SyncProducer, topics config.TopicsConfig, log *logger.Logger) *KafkaNotifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &KafkaNotifier{
		producer: producer,
		topics:   topics,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// Notify 每条通知一条消息，以收件人邮箱为 key，一次批量发送
func (n *KafkaNotifier) Notify(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	at := n.now()
	msgs := make([]*sarama.ProducerMessage, 0, len(notifications))
	for _, notification := range notifications {
		value, err := json.Marshal(newAssignmentMessage(notification, at))
		if err != nil {
			return fmt.Errorf("failed to encode notification: %w", err)
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: n.topics.Notifications,
			Key:   sarama.StringEncoder(notification.Email),
			Value: sarama.ByteEncoder(value),
		})
	}

	if err := n.producer.SendMessages(msgs); err != nil {
		n.log.ErrorContext(ctx, "发送任务通知失败",
			zap.String("topic", n.topics.Notifications),
			zap.Int("count", len(msgs)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send %d notifications to topic %s: %w", len(msgs), n.topics.Notifications, err)
	}
	n.log.InfoContext(ctx, "任务通知已发送",
		zap.String("topic", n.topics.Notifications),
		zap.Int("count", len(msgs)),
	)
	return nil
}

// SendInvitation 把邀请发布到邀请主题，以受邀人为 key
func (n *KafkaNotifier) SendInvitation(ctx context.Context, inv *models.Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(newInvitationMessage(inv, n.now()))
	if err != nil {
		return fmt.Errorf("failed to encode invitation: %w", err)
	}

	partition, offset, err := n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topics.Invitations,
		Key:   sarama.StringEncoder(inv.Invitee),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		n.log.ErrorContext(ctx, "发送邀请失败",
			zap.String("topic", n.topics.Invitations),
			zap.String("code", inv.Code),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send invitation to topic %s: %w", n.topics.Invitations, err)
	}
	n.log.InfoContext(ctx, "邀请已发送",
		zap.String("code", inv.Code),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (n *KafkaNotifier) Close() error {
	if n.producer != nil {
		if err := n.producer.Close(); err != nil {
			return fmt.Errorf("failed to close kafka producer: %w", err)
		}
	}
	return nil
}
