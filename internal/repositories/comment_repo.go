package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Gopher0727/StudyConnect/internal/models"
)

// CommentRepository 任务评论仓储
type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := conn(ctx, r.db).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListByTask 按创建时间返回任务下的评论
func (r *CommentRepository) ListByTask(ctx context.Context, taskID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := conn(ctx, r.db).Where("task_id = ?", taskID).Order("created_at, id").Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
