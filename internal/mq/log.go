package mq

import (
	"context"

	"go.uber.org/zap"

	"github.com/Gopher0727/StudyConnect/internal/models"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
)

// LogNotifier 只写日志的投递实现。
// 未配置 Kafka 时作为 Notifier 使用，消费者也用它作为最终投递端。
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, notifications []models.Notification) error {
	for _, notification := range notifications {
		n.log.InfoContext(ctx, "任务通知",
			zap.Uint("user_id", notification.UserID),
			zap.String("email", notification.Email),
			zap.Uint("task_id", notification.TaskID),
			zap.String("message", notification.Message),
		)
	}
	return nil
}

func (n *LogNotifier) SendInvitation(ctx context.Context, inv *models.Invitation) error {
	n.log.InfoContext(ctx, "入组邀请",
		zap.String("code", inv.Code),
		zap.Uint("group_id", inv.GroupID),
		zap.String("invitee", inv.Invitee),
		zap.Time("expires_at", inv.ExpiresAt),
	)
	return nil
}

func (n *LogNotifier) DeliverAssignment(ctx context.Context, msg AssignmentMessage) error {
	n.log.InfoContext(ctx, "投递任务通知",
		zap.String("email", msg.Email),
		zap.Uint("task_id", msg.TaskID),
		zap.String("message", msg.Message),
	)
	return nil
}

func (n *LogNotifier) DeliverInvitation(ctx context.Context, msg InvitationMessage) error {
	n.log.InfoContext(ctx, "投递入组邀请",
		zap.String("invitee", msg.Invitee),
		zap.String("code", msg.Code),
		zap.Uint("group_id", msg.GroupID),
	)
	return nil
}
