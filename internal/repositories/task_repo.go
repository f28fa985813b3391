package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/models"
)

const ReasonTaskNotFound = "Task not found"

// TaskRepository 任务仓储
type TaskRepository struct {
	db *gorm.DB
	tx *TxManager
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db, tx: NewTxManager(db)}
}

// Transaction 供需要全部成功或全部回滚的流程使用
func (r *TaskRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.tx.Transaction(ctx, fn)
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := conn(ctx, r.db).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := conn(ctx, r.db).First(&task, id).Error; err != nil {
		return nil, translate(err, "get task", ReasonTaskNotFound)
	}
	return &task, nil
}

// FindByTitle 返回创建者名下标题完全相同的最新任务
func (r *TaskRepository) FindByTitle(ctx context.Context, creatorID uint, title string) (*models.Task, error) {
	var task models.Task
	err := conn(ctx, r.db).
		Where("created_by = ? AND title = ?", creatorID, title).
		Order("id DESC").
		First(&task).Error
	if err != nil {
		return nil, translate(err, "find task by title", ReasonTaskNotFound)
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	if err := conn(ctx, r.db).Save(task).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// Delete 删除任务及其评论
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	return r.tx.Transaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.db)
		if err := db.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete task comments: %w", err)
		}
		res := db.Delete(&models.Task{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(ReasonTaskNotFound)
		}
		return nil
	})
}

// ListForUser 返回用户创建的个人任务，以及 groupIDs 中各小组的任务，按 ID 排序
func (r *TaskRepository) ListForUser(ctx context.Context, userID uint, groupIDs []uint) ([]models.Task, error) {
	query := conn(ctx, r.db).Where("group_id IS NULL AND created_by = ?", userID)
	if len(groupIDs) > 0 {
		query = conn(ctx, r.db).Where("(group_id IS NULL AND created_by = ?) OR group_id IN ?", userID, groupIDs)
	}

	var tasks []models.Task
	if err := query.Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}
