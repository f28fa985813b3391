package models

import "time"

// Task 任务模型；GroupID 为空表示个人任务
type Task struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Title       string       `gorm:"size:200;not null" json:"title"`
	Description string       `gorm:"size:1000" json:"description"`
	DueDate     *time.Time   `gorm:"index" json:"due_date"`
	Priority    TaskPriority `gorm:"size:16;not null" json:"priority"`
	Status      TaskStatus   `gorm:"size:16;not null" json:"status"`
	Category    string       `gorm:"size:50" json:"category"`
	CreatedBy   uint         `gorm:"not null;index" json:"created_by"`
	AssignedTo  *uint        `gorm:"index" json:"assigned_to"`
	GroupID     *uint        `gorm:"index" json:"group_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) IsPersonalTask() bool {
	return t.GroupID == nil
}

func (t *Task) IsGroupTask() bool {
	return t.GroupID != nil
}

// IsOverdue 截止时间早于 now 且未完成
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = now
}
