package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/models"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
)

// AssignmentService 把小组任务分配给成员并通知
type AssignmentService struct {
	tasks    TaskStore
	groups   GroupStore
	users    UserStore
	tx       Transactor
	notifier Notifier
	clock    Clock
	log      *logger.Logger
}

func NewAssignmentService(tasks TaskStore, groups GroupStore, users UserStore, tx Transactor, notifier Notifier, clock Clock, log *logger.Logger) *AssignmentService {
	return &AssignmentService{
		tasks:    tasks,
		groups:   groups,
		users:    users,
		tx:       tx,
		notifier: notifier,
		clock:    clock,
		log:      log,
	}
}

// AssignRequest 分配请求
type AssignRequest struct {
	AssigneeIDs []uint `json:"assignee_ids"`
}

// AssignmentResult 分配结果
type AssignmentResult struct {
	Task          *TaskDTO              `json:"task"`
	Notifications []models.Notification `json:"notifications"`
}

// AssignTask 只有第一个被选中的成员写入 AssignedTo，但每个被选中的成员都会收到一条通知。
// 分配与通知投递在同一事务中，投递失败时分配回滚。
func (s *AssignmentService) AssignTask(ctx context.Context, taskID, adminID uint, assigneeIDs []uint) (*AssignmentResult, string, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, "", err
	}
	if !task.IsGroupTask() {
		return nil, "", apperr.Validation(ReasonGroupTaskOnly)
	}
	groupID := *task.GroupID
	if _, err := requireAdmin(ctx, s.groups, groupID, adminID, ReasonAdminAssign); err != nil {
		return nil, "", err
	}
	assignees := dedupe(assigneeIDs)
	if len(assignees) == 0 {
		return nil, "", apperr.Validation(ReasonNoAssignee)
	}

	now := s.clock.now()
	var notifications []models.Notification
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.groups.LockByID(ctx, groupID); err != nil {
			return err
		}
		for _, id := range assignees {
			ok, err := s.groups.IsMember(ctx, groupID, id)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Validation(ReasonAssigneeNotMember)
			}
		}
		users, err := s.users.GetByIDs(ctx, assignees)
		if err != nil {
			return err
		}

		// 重新读取，避免覆盖并发编辑
		current, err := s.tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		first := assignees[0]
		current.AssignedTo = &first
		current.Touch(now)
		if err := s.tasks.Update(ctx, current); err != nil {
			return err
		}
		task = current

		notifications = make([]models.Notification, 0, len(assignees))
		for _, id := range assignees {
			n := models.Notification{UserID: id, TaskID: taskID, Message: AssignmentMessage(task.Title)}
			if u, ok := users[id]; ok {
				n.Email = u.Email
			}
			notifications = append(notifications, n)
		}
		if err := s.notifier.Notify(ctx, notifications); err != nil {
			return apperr.Delivery(ReasonDeliveryRetry, err)
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindDelivery {
			s.log.WarnContext(ctx, "assignment notification failed", zap.Uint("task_id", taskID), zap.Error(err))
		}
		return nil, "", err
	}

	s.log.InfoContext(ctx, "task assigned",
		zap.Uint("task_id", taskID),
		zap.Uint("assigned_to", assignees[0]),
		zap.Int("notified", len(notifications)),
	)
	return &AssignmentResult{Task: toTaskDTO(task, now), Notifications: notifications}, ReasonTaskAssigned, nil
}

// dedupe 去重并保留首次出现的顺序
func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
