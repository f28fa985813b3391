package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/Gopher0727/StudyConnect/internal/models"
	"github.com/Gopher0727/StudyConnect/internal/validation"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
)

// TaskService 个人任务与小组任务的生命周期
type TaskService struct {
	tasks  TaskStore
	users  UserStore
	groups GroupStore
	clock  Clock
	log    *logger.Logger
}

func NewTaskService(tasks TaskStore, users UserStore, groups GroupStore, clock Clock, log *logger.Logger) *TaskService {
	return &TaskService{tasks: tasks, users: users, groups: groups, clock: clock, log: log}
}

// CreateTaskRequest 创建任务请求，GroupID 为空表示个人任务
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Due         string `json:"due"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	GroupID     *uint  `json:"group_id"`
}

// UpdateTaskRequest 编辑任务请求，缺省字段保持不变
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Due         *string `json:"due"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	Category    *string `json:"category"`
}

// CreateTask 校验并创建任务，成功时原因为 "Success"
func (s *TaskService) CreateTask(ctx context.Context, creatorID uint, req *CreateTaskRequest) (*TaskDTO, string, error) {
	draft, err := validation.ValidateNewTask(validation.TaskInput{
		Title:    req.Title,
		Notes:    req.Description,
		Due:      req.Due,
		Priority: req.Priority,
		Category: req.Category,
	})
	if err != nil {
		return nil, "", err
	}

	if _, err := s.users.GetByID(ctx, creatorID); err != nil {
		return nil, "", err
	}
	if req.GroupID != nil {
		if _, err := s.groups.GetByID(ctx, *req.GroupID); err != nil {
			return nil, "", err
		}
		if _, err := requireMember(ctx, s.groups, *req.GroupID, creatorID, ReasonNotGroupMember); err != nil {
			return nil, "", err
		}
	}

	now := s.clock.now()
	task := &models.Task{
		CreatedBy: creatorID,
		GroupID:   req.GroupID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	draft.Apply(task)
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, "", err
	}

	s.log.InfoContext(ctx, "task created", zap.Uint("task_id", task.ID), zap.Uint("creator_id", creatorID))
	return toTaskDTO(task, now), validation.ReasonSuccess, nil
}

// EditTask 只修改请求中出现的字段；截止日期早于今天时保存并返回警告原因
func (s *TaskService) EditTask(ctx context.Context, taskID, actorID uint, req *UpdateTaskRequest) (*TaskDTO, string, error) {
	task, err := s.loadAccessible(ctx, taskID, actorID)
	if err != nil {
		return nil, "", err
	}

	now := s.clock.now()
	patch, reason, err := validation.ValidateTaskEdit(validation.TaskEdit{
		Title:    req.Title,
		Notes:    req.Description,
		Due:      req.Due,
		Priority: req.Priority,
		Status:   req.Status,
		Category: req.Category,
	}, now)
	if err != nil {
		return nil, "", err
	}

	patch.Apply(task, now)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, "", err
	}
	return toTaskDTO(task, now), reason, nil
}

// ChangeStatus 允许在任意合法状态之间切换
func (s *TaskService) ChangeStatus(ctx context.Context, taskID, actorID uint, status string) (*TaskDTO, error) {
	st, err := validation.ValidateStatus(status)
	if err != nil {
		return nil, err
	}
	task, err := s.loadAccessible(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	now := s.clock.now()
	task.Status = st
	task.Touch(now)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return toTaskDTO(task, now), nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID, actorID uint) (*TaskDTO, error) {
	task, err := s.loadAccessible(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	return toTaskDTO(task, s.clock.now()), nil
}

// FindByTitle 按标题查找创建者自己的任务
func (s *TaskService) FindByTitle(ctx context.Context, creatorID uint, title string) (*TaskDTO, error) {
	task, err := s.tasks.FindByTitle(ctx, creatorID, title)
	if err != nil {
		return nil, err
	}
	return toTaskDTO(task, s.clock.now()), nil
}

// ListTasks 个人任务加上所在小组的任务
func (s *TaskService) ListTasks(ctx context.Context, userID uint) ([]*TaskDTO, error) {
	groupIDs, err := s.groups.GetUserGroupIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListForUser(ctx, userID, groupIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.now()
	result := make([]*TaskDTO, 0, len(tasks))
	for i := range tasks {
		result = append(result, toTaskDTO(&tasks[i], now))
	}
	return result, nil
}

// DeleteTask 创建者可以删除；小组任务也可以由小组管理员删除
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID uint) error {
	task, err := s.loadAccessible(ctx, taskID, actorID)
	if err != nil {
		return err
	}
	// 个人任务在 loadAccessible 中已限定为创建者
	if task.CreatedBy != actorID {
		if _, err := requireAdmin(ctx, s.groups, *task.GroupID, actorID, ReasonDeleteTask); err != nil {
			return err
		}
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "task deleted", zap.Uint("task_id", taskID), zap.Uint("actor_id", actorID))
	return nil
}

func (s *TaskService) loadAccessible(ctx context.Context, taskID, userID uint) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := canAccessTask(ctx, s.groups, task, userID); err != nil {
		return nil, err
	}
	return task, nil
}
