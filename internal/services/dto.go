package services

import (
	"time"

	"github.com/Gopher0727/StudyConnect/internal/models"
)

// UserDTO 用户数据传输对象
type UserDTO struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func toUserDTO(u *models.User) *UserDTO {
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// TaskDTO 任务数据传输对象，IsOverdue 按请求时刻计算
type TaskDTO struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueDate     *time.Time          `json:"due_date"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	Category    string              `json:"category"`
	CreatedBy   uint                `json:"created_by"`
	AssignedTo  *uint               `json:"assigned_to"`
	GroupID     *uint               `json:"group_id"`
	IsOverdue   bool                `json:"is_overdue"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toTaskDTO(t *models.Task, now time.Time) *TaskDTO {
	return &TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status,
		Category:    t.Category,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		GroupID:     t.GroupID,
		IsOverdue:   t.IsOverdue(now),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// GroupDTO 小组数据传输对象
type GroupDTO struct {
	ID          uint                   `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Visibility  models.GroupVisibility `json:"visibility"`
	MaxMembers  int                    `json:"max_members"`
	MemberCount int64                  `json:"member_count"`
	CreatedBy   uint                   `json:"created_by"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func toGroupDTO(g *models.Group, memberCount int64) *GroupDTO {
	return &GroupDTO{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Visibility:  g.Visibility,
		MaxMembers:  g.MaxMembers,
		MemberCount: memberCount,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// MemberDTO 小组成员数据传输对象
type MemberDTO struct {
	GroupID   uint             `json:"group_id"`
	UserID    uint             `json:"user_id"`
	Role      models.GroupRole `json:"role"`
	JoinedAt  time.Time        `json:"joined_at"`
	InvitedBy *uint            `json:"invited_by"`
}

func toMemberDTO(m *models.GroupMember) *MemberDTO {
	return &MemberDTO{
		GroupID:   m.GroupID,
		UserID:    m.UserID,
		Role:      m.Role,
		JoinedAt:  m.JoinedAt,
		InvitedBy: m.InvitedBy,
	}
}

// InvitationDTO Status 为计入惰性过期后的状态
type InvitationDTO struct {
	Code       string                  `json:"code"`
	GroupID    uint                    `json:"group_id"`
	InviterID  uint                    `json:"inviter_id"`
	Invitee    string                  `json:"invitee"`
	Status     models.InvitationStatus `json:"status"`
	ExpiresAt  time.Time               `json:"expires_at"`
	AcceptedAt *time.Time              `json:"accepted_at,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

func toInvitationDTO(inv *models.Invitation, now time.Time) *InvitationDTO {
	return &InvitationDTO{
		Code:       inv.Code,
		GroupID:    inv.GroupID,
		InviterID:  inv.InviterID,
		Invitee:    inv.Invitee,
		Status:     inv.EffectiveStatus(now),
		ExpiresAt:  inv.ExpiresAt,
		AcceptedAt: inv.AcceptedAt,
		CreatedAt:  inv.CreatedAt,
	}
}

// CommentDTO 评论数据传输对象
type CommentDTO struct {
	ID        uint      `json:"id"`
	TaskID    uint      `json:"task_id"`
	UserID    uint      `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentDTO(c *models.Comment) *CommentDTO {
	return &CommentDTO{
		ID:        c.ID,
		TaskID:    c.TaskID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}
