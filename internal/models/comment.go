package models

import "time"

// Comment 任务评论
type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	TaskID  uint   `gorm:"not null;index" json:"task_id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Content string `gorm:"size:2000;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}
