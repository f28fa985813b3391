package services

import (
	"context"

	"github.com/Gopher0727/StudyConnect/internal/models"
	"github.com/Gopher0727/StudyConnect/internal/validation"
)

// CommentService 任务评论，访问规则与任务一致
type CommentService struct {
	comments CommentStore
	tasks    TaskStore
	groups   GroupStore
	clock    Clock
}

func NewCommentService(comments CommentStore, tasks TaskStore, groups GroupStore, clock Clock) *CommentService {
	return &CommentService{comments: comments, tasks: tasks, groups: groups, clock: clock}
}

type AddCommentRequest struct {
	Content string `json:"content"`
}

func (s *CommentService) AddComment(ctx context.Context, taskID, userID uint, content string) (*CommentDTO, error) {
	if err := validation.ValidateComment(content); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, taskID, userID); err != nil {
		return nil, err
	}

	now := s.clock.now()
	comment := &models.Comment{
		TaskID:    taskID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return toCommentDTO(comment), nil
}

func (s *CommentService) ListComments(ctx context.Context, taskID, userID uint) ([]*CommentDTO, error) {
	if err := s.authorize(ctx, taskID, userID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	result := make([]*CommentDTO, 0, len(comments))
	for i := range comments {
		result = append(result, toCommentDTO(&comments[i]))
	}
	return result, nil
}

func (s *CommentService) authorize(ctx context.Context, taskID, userID uint) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	return canAccessTask(ctx, s.groups, task, userID)
}
