package mq

import (
	"time"

	"github.com/Gopher0727/StudyConnect/internal/models"
)

// 消息类型，写入 JSON 的 type 字段
const (
	TypeTaskAssigned    = "task_assigned"
	TypeGroupInvitation = "group_invitation"
)

// AssignmentMessage 通知主题上的一条任务分配通知
type AssignmentMessage struct {
	Type    string    `json:"type"`
	UserID  uint      `json:"user_id"`
	Email   string    `json:"email"`
	TaskID  uint      `json:"task_id"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// InvitationMessage 邀请主题上的一条入组邀请
type InvitationMessage struct {
	Type      string    `json:"type"`
	Code      string    `json:"code"`
	GroupID   uint      `json:"group_id"`
	InviterID uint      `json:"inviter_id"`
	Invitee   string    `json:"invitee"`
	ExpiresAt time.Time `json:"expires_at"`
	SentAt    time.Time `json:"sent_at"`
}

func newAssignmentMessage(n models.Notification, at time.Time) AssignmentMessage {
	return AssignmentMessage{
		Type:    TypeTaskAssigned,
		UserID:  n.UserID,
		Email:   n.Email,
		TaskID:  n.TaskID,
		Message: n.Message,
		SentAt:  at,
	}
}

func newInvitationMessage(inv *models.Invitation, at time.Time) InvitationMessage {
	return InvitationMessage{
		Type:      TypeGroupInvitation,
		Code:      inv.Code,
		GroupID:   inv.GroupID,
		InviterID: inv.InviterID,
		Invitee:   inv.Invitee,
		ExpiresAt: inv.ExpiresAt.UTC(),
		SentAt:    at,
	}
}
