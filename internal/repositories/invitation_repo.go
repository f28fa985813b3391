package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/models"
)

const ReasonInvitationNotFound = "Invitation not found"

var ErrInvitationUsed = apperr.Validation("Invitation already used")

// InvitationRepository 入组邀请仓储
type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	if err := conn(ctx, r.db).Create(inv).Error; err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (r *InvitationRepository) GetByCode(ctx context.Context, code string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := conn(ctx, r.db).Where("code = ?", code).First(&inv).Error; err != nil {
		return nil, translate(err, "get invitation", ReasonInvitationNotFound)
	}
	return &inv, nil
}

// FindPending 返回 (小组, 受邀人) 下尚未过期的待处理邀请，没有时返回 nil。
// 过期按 now 惰性判断，不依赖数据库的时间比较。
func (r *InvitationRepository) FindPending(ctx context.Context, groupID uint, invitee string, now time.Time) (*models.Invitation, error) {
	var invs []models.Invitation
	err := conn(ctx, r.db).
		Where("group_id = ? AND invitee = ? AND status = ?", groupID, invitee, models.InvitationPending).
		Order("id").
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("find pending invitation: %w", err)
	}
	for i := range invs {
		if invs[i].IsPending(now) {
			return &invs[i], nil
		}
	}
	return nil, nil
}

// MarkAccepted 只有仍处于 PENDING 的邀请可以被接受
func (r *InvitationRepository) MarkAccepted(ctx context.Context, id uint, at time.Time) error {
	res := conn(ctx, r.db).Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.InvitationPending).
		Updates(map[string]any{"status": models.InvitationAccepted, "accepted_at": at})
	if res.Error != nil {
		return fmt.Errorf("accept invitation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInvitationUsed
	}
	return nil
}
