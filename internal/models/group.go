package models

import "time"

const (
	// DefaultMaxMembers 未指定人数上限时的默认值
	DefaultMaxMembers = 20
	MinMaxMembers     = 2
	MaxMaxMembers     = 50
)

// Group 学习小组模型
type Group struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"size:500" json:"description"`
	Visibility  GroupVisibility `gorm:"size:16;not null" json:"visibility"`
	MaxMembers  int             `gorm:"not null" json:"max_members"`
	CreatedBy   uint            `gorm:"not null;index" json:"created_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Group) TableName() string {
	return "study_groups"
}

func (g *Group) Touch(now time.Time) {
	g.UpdatedAt = now
}

func (g *Group) IsPublic() bool {
	return g.Visibility == VisibilityPublic
}
