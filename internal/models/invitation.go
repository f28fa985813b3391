package models

import "time"

// Invitation 管理员发出的入组邀请
type Invitation struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Code       string           `gorm:"size:16;uniqueIndex;not null" json:"code"`
	GroupID    uint             `gorm:"not null;index:idx_invitation_group_invitee" json:"group_id"`
	InviterID  uint             `gorm:"not null" json:"inviter_id"`
	Invitee    string           `gorm:"size:255;not null;index:idx_invitation_group_invitee" json:"invitee"`
	Status     InvitationStatus `gorm:"size:16;not null" json:"status"`
	ExpiresAt  time.Time        `gorm:"not null" json:"expires_at"`
	AcceptedAt *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (Invitation) TableName() string {
	return "invitations"
}

// IsExpired 未被接受且已到期
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.Status == InvitationPending && !now.Before(i.ExpiresAt)
}

func (i *Invitation) IsPending(now time.Time) bool {
	return i.Status == InvitationPending && now.Before(i.ExpiresAt)
}

// EffectiveStatus 计入惰性过期后的状态
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.IsExpired(now) {
		return InvitationExpired
	}
	return i.Status
}
