package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/models"
	"github.com/Gopher0727/StudyConnect/internal/validation"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
)

// DefaultInvitationTTL 邀请默认有效期
const DefaultInvitationTTL = 7 * 24 * time.Hour

// InvitationService 管理员发出入组邀请，受邀人凭邀请码加入
type InvitationService struct {
	invitations InvitationStore
	groups      GroupStore
	users       UserStore
	tx          Transactor
	notifier    Notifier
	codes       CodeGenerator
	ttl         time.Duration
	clock       Clock
	log         *logger.Logger
}

type InvitationDeps struct {
	Invitations InvitationStore
	Groups      GroupStore
	Users       UserStore
	Tx          Transactor
	Notifier    Notifier
	Codes       CodeGenerator
	TTL         time.Duration
	Clock       Clock
	Log         *logger.Logger
}

func NewInvitationService(deps InvitationDeps) *InvitationService {
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}
	return &InvitationService{
		invitations: deps.Invitations,
		groups:      deps.Groups,
		users:       deps.Users,
		tx:          deps.Tx,
		notifier:    deps.Notifier,
		codes:       deps.Codes,
		ttl:         ttl,
		clock:       deps.Clock,
		log:         deps.Log,
	}
}

// InviteRequest 邀请请求，Invitee 为受邀人邮箱
type InviteRequest struct {
	Invitee string `json:"invitee"`
}

// Invite 记录邀请并投递通知。重复检查在小组行锁内完成，投递失败时邀请一并回滚。
func (s *InvitationService) Invite(ctx context.Context, groupID, inviterID uint, invitee string) (*InvitationDTO, string, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, "", err
	}
	if _, err := requireAdmin(ctx, s.groups, groupID, inviterID, ReasonAdminInvite); err != nil {
		return nil, "", err
	}
	if !validation.IsEmailShaped(invitee) {
		return nil, "", apperr.Validation(ReasonInvalidInvitee)
	}
	invitee = validation.NormalizeEmail(invitee)

	now := s.clock.now()
	var inv *models.Invitation
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.groups.LockByID(ctx, groupID); err != nil {
			return err
		}
		pending, err := s.invitations.FindPending(ctx, groupID, invitee, now)
		if err != nil {
			return err
		}
		if pending != nil {
			return apperr.Validation(ReasonDuplicateInvite)
		}
		if err := s.ensureNotMember(ctx, groupID, invitee); err != nil {
			return err
		}

		code, err := s.codes.NextCode()
		if err != nil {
			return fmt.Errorf("generate invitation code: %w", err)
		}
		inv = &models.Invitation{
			Code:      code,
			GroupID:   groupID,
			InviterID: inviterID,
			Invitee:   invitee,
			Status:    models.InvitationPending,
			ExpiresAt: now.Add(s.ttl),
			CreatedAt: now,
		}
		if err := s.invitations.Create(ctx, inv); err != nil {
			return err
		}
		if err := s.notifier.SendInvitation(ctx, inv); err != nil {
			return apperr.Delivery(ReasonDeliveryRetry, err)
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindDelivery {
			s.log.WarnContext(ctx, "invitation delivery failed", zap.Uint("group_id", groupID), zap.Error(err))
		}
		return nil, "", err
	}

	s.log.InfoContext(ctx, "invitation recorded", zap.Uint("group_id", groupID), zap.String("code", inv.Code))
	return toInvitationDTO(inv, now), ReasonInviteRecorded, nil
}

func (s *InvitationService) ensureNotMember(ctx context.Context, groupID uint, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}
	ok, err := s.groups.IsMember(ctx, groupID, user.ID)
	if err != nil {
		return err
	}
	if ok {
		return apperr.Conflict(ReasonAlreadyMember)
	}
	return nil
}

// Accept 按邀请码加入小组，成为 STUDENT 且 InvitedBy 记录邀请人
func (s *InvitationService) Accept(ctx context.Context, code string, userID uint) (*MemberDTO, string, error) {
	now := s.clock.now()
	var member *models.GroupMember
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		inv, err := s.invitations.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if inv.IsExpired(now) {
			return apperr.Validation(ReasonInviteExpired)
		}
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if validation.NormalizeEmail(user.Email) != inv.Invitee {
			return apperr.Permission(ReasonInviteOtherUser)
		}
		if inv.Status != models.InvitationPending {
			return apperr.Validation(ReasonInviteUsed)
		}

		inviter := inv.InviterID
		member = &models.GroupMember{
			GroupID:   inv.GroupID,
			UserID:    userID,
			Role:      models.RoleStudent,
			JoinedAt:  now,
			InvitedBy: &inviter,
		}
		if err := s.groups.AddMember(ctx, member); err != nil {
			return err
		}
		return s.invitations.MarkAccepted(ctx, inv.ID, now)
	})
	if err != nil {
		return nil, "", err
	}

	s.log.InfoContext(ctx, "invitation accepted", zap.String("code", code), zap.Uint("user_id", userID))
	return toMemberDTO(member), ReasonInviteAccepted, nil
}

// Get 查询邀请，状态中计入惰性过期
func (s *InvitationService) Get(ctx context.Context, code string) (*InvitationDTO, error) {
	inv, err := s.invitations.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toInvitationDTO(inv, s.clock.now()), nil
}
