package models

import "time"

// GroupMember 小组成员，(GroupID, UserID) 唯一
type GroupMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"not null;uniqueIndex:idx_group_user" json:"group_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_group_user;index" json:"user_id"`
	Role      GroupRole `gorm:"size:16;not null" json:"role"`
	JoinedAt  time.Time `gorm:"not null" json:"joined_at"`
	InvitedBy *uint     `json:"invited_by"` // nil 表示自行加入
}

func (GroupMember) TableName() string {
	return "group_members"
}

func (m *GroupMember) IsAdmin() bool {
	return m.Role == RoleAdmin
}

func (m *GroupMember) IsStudent() bool {
	return m.Role == RoleStudent
}
