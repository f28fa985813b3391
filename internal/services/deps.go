package services

import (
	"context"
	"time"

	"github.com/Gopher0727/StudyConnect/internal/models"
)

// 服务只依赖这些接口，repositories 包提供 gorm 实现

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
}

type GroupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	LockByID(ctx context.Context, id uint) (*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id uint) error
	ListPublic(ctx context.Context) ([]models.Group, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Group, error)
	CountMembersByGroup(ctx context.Context, ids []uint) (map[uint]int64, error)
	FindMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error)
	GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error)
	CountActiveMembers(ctx context.Context, groupID uint) (int64, error)
	CountAdmins(ctx context.Context, groupID uint) (int64, error)
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)
	GetUserGroupIDs(ctx context.Context, userID uint) ([]uint, error)
	AddMember(ctx context.Context, member *models.GroupMember) error
	RemoveMember(ctx context.Context, groupID, userID uint) error
	UpdateMemberRole(ctx context.Context, groupID, userID uint, role models.GroupRole) error
}

type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	FindByTitle(ctx context.Context, creatorID uint, title string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uint) error
	ListForUser(ctx context.Context, userID uint, groupIDs []uint) ([]models.Task, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByTask(ctx context.Context, taskID uint) ([]models.Comment, error)
}

type InvitationStore interface {
	Create(ctx context.Context, inv *models.Invitation) error
	GetByCode(ctx context.Context, code string) (*models.Invitation, error)
	FindPending(ctx context.Context, groupID uint, invitee string, now time.Time) (*models.Invitation, error)
	MarkAccepted(ctx context.Context, id uint, at time.Time) error
}

// Transactor 在同一事务中执行 fn，fn 返回错误时回滚
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier 对外投递通知。返回错误时调用方回滚对应的领域变更。
type Notifier interface {
	Notify(ctx context.Context, notifications []models.Notification) error
	SendInvitation(ctx context.Context, inv *models.Invitation) error
}

// CodeGenerator 生成邀请码
type CodeGenerator interface {
	NextCode() (string, error)
}

// Clock 返回当前时间，测试中可替换
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func (c Clock) now() time.Time {
	if c == nil {
		return utcNow()
	}
	return c().UTC()
}
