package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/models"
	"github.com/Gopher0727/StudyConnect/internal/validation"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
)

// GroupService 学习小组及成员管理
type GroupService struct {
	groups GroupStore
	users  UserStore
	tx     Transactor
	clock  Clock
	log    *logger.Logger
}

func NewGroupService(groups GroupStore, users UserStore, tx Transactor, clock Clock, log *logger.Logger) *GroupService {
	return &GroupService{groups: groups, users: users, tx: tx, clock: clock, log: log}
}

// CreateGroupRequest 创建小组请求，MaxMembers 为 0 时使用默认值 20
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	MaxMembers  int    `json:"max_members"`
}

// CreateGroup 校验并创建小组，创建者成为 ADMIN 成员
func (s *GroupService) CreateGroup(ctx context.Context, creatorID uint, req *CreateGroupRequest) (*GroupDTO, string, error) {
	draft, err := validation.ValidateNewGroup(validation.GroupInput{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
		MaxMembers:  req.MaxMembers,
	})
	if err != nil {
		return nil, "", err
	}
	if _, err := s.users.GetByID(ctx, creatorID); err != nil {
		return nil, "", err
	}

	now := s.clock.now()
	group := &models.Group{CreatedBy: creatorID, CreatedAt: now, UpdatedAt: now}
	draft.Apply(group)
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, "", err
	}

	s.log.InfoContext(ctx, "group created", zap.Uint("group_id", group.ID), zap.Uint("creator_id", creatorID))
	return toGroupDTO(group, 1), validation.ReasonSuccess, nil
}

// GetGroup 公开小组所有人可见，私有小组仅成员可见
func (s *GroupService) GetGroup(ctx context.Context, groupID, userID uint) (*GroupDTO, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsPublic() {
		if _, err := requireMember(ctx, s.groups, groupID, userID, ReasonNotGroupMember); err != nil {
			return nil, err
		}
	}
	count, err := s.groups.CountActiveMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return toGroupDTO(group, count), nil
}

// ListPublicGroups 全部公开小组，任何用户可见
func (s *GroupService) ListPublicGroups(ctx context.Context) ([]*GroupDTO, error) {
	groups, err := s.groups.ListPublic(ctx)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, groups)
}

// ListMyGroups 用户所在的全部小组，包括私有小组
func (s *GroupService) ListMyGroups(ctx context.Context, userID uint) ([]*GroupDTO, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.groups.GetUserGroupIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups, err := s.groups.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, groups)
}

func (s *GroupService) withCounts(ctx context.Context, groups []models.Group) ([]*GroupDTO, error) {
	ids := make([]uint, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	counts, err := s.groups.CountMembersByGroup(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make([]*GroupDTO, 0, len(groups))
	for i := range groups {
		result = append(result, toGroupDTO(&groups[i], counts[groups[i].ID]))
	}
	return result, nil
}

// ListMembers 仅成员可以查看成员列表
func (s *GroupService) ListMembers(ctx context.Context, groupID, userID uint) ([]*MemberDTO, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	if _, err := requireMember(ctx, s.groups, groupID, userID, ReasonNotGroupMember); err != nil {
		return nil, err
	}
	members, err := s.groups.FindMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	result := make([]*MemberDTO, 0, len(members))
	for i := range members {
		result = append(result, toMemberDTO(&members[i]))
	}
	return result, nil
}

// JoinGroup 自行加入公开小组，受人数上限约束
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID uint) (*MemberDTO, string, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, "", err
	}
	if !group.IsPublic() {
		return nil, "", apperr.Permission(ReasonGroupPrivate)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, "", err
	}

	member := &models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     models.RoleStudent,
		JoinedAt: s.clock.now(),
	}
	if err := s.groups.AddMember(ctx, member); err != nil {
		return nil, "", err
	}
	s.log.InfoContext(ctx, "member joined", zap.Uint("group_id", groupID), zap.Uint("user_id", userID))
	return toMemberDTO(member), ReasonJoinedGroup, nil
}

// LeaveGroup 创建者和最后一名管理员不能退出
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID uint) (string, error) {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		group, err := s.groups.LockByID(ctx, groupID)
		if err != nil {
			return err
		}
		member, err := requireMember(ctx, s.groups, groupID, userID, ReasonNotGroupMember)
		if err != nil {
			return err
		}
		if group.CreatedBy == userID {
			return apperr.Validation(ReasonCreatorCannotGo)
		}
		if member.IsAdmin() {
			admins, err := s.groups.CountAdmins(ctx, groupID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperr.Validation(ReasonLastAdminLeave)
			}
		}
		return s.groups.RemoveMember(ctx, groupID, userID)
	})
	if err != nil {
		return "", err
	}
	return ReasonLeftGroup, nil
}

// RemoveMember 管理员移出成员。创建者不能被移出，最后一名管理员也不能被移出。
func (s *GroupService) RemoveMember(ctx context.Context, groupID, adminID, targetID uint) (string, error) {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		group, err := s.groups.LockByID(ctx, groupID)
		if err != nil {
			return err
		}
		if _, err := requireAdmin(ctx, s.groups, groupID, adminID, ReasonAdminRemove); err != nil {
			return err
		}
		target, err := s.groups.GetMember(ctx, groupID, targetID)
		if err != nil {
			return err
		}
		if group.CreatedBy == targetID {
			return apperr.Validation(ReasonCreatorRemove)
		}
		if target.IsAdmin() {
			admins, err := s.groups.CountAdmins(ctx, groupID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperr.Validation(ReasonLastAdminRemove)
			}
		}
		return s.groups.RemoveMember(ctx, groupID, targetID)
	})
	if err != nil {
		return "", err
	}
	s.log.InfoContext(ctx, "member removed", zap.Uint("group_id", groupID), zap.Uint("user_id", targetID), zap.Uint("admin_id", adminID))
	return ReasonMemberRemoved, nil
}

// ChangeVisibility 仅管理员可以修改可见性
func (s *GroupService) ChangeVisibility(ctx context.Context, groupID, actorID uint, visibility string) (*GroupDTO, error) {
	v, err := validation.ValidateVisibility(visibility)
	if err != nil {
		return nil, err
	}
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := requireAdmin(ctx, s.groups, groupID, actorID, ReasonAdminVisibility); err != nil {
		return nil, err
	}

	group.Visibility = v
	group.Touch(s.clock.now())
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	count, err := s.groups.CountActiveMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return toGroupDTO(group, count), nil
}

// ChangeMemberRole 仅管理员可以调整角色，最后一名管理员不能被降级
func (s *GroupService) ChangeMemberRole(ctx context.Context, groupID, actorID, targetID uint, role string) (*MemberDTO, error) {
	r, err := validation.ValidateRole(role)
	if err != nil {
		return nil, err
	}

	var updated *models.GroupMember
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.groups.LockByID(ctx, groupID); err != nil {
			return err
		}
		if _, err := requireAdmin(ctx, s.groups, groupID, actorID, ReasonAdminRoles); err != nil {
			return err
		}
		target, err := s.groups.GetMember(ctx, groupID, targetID)
		if err != nil {
			return err
		}
		if target.IsAdmin() && r == models.RoleStudent {
			admins, err := s.groups.CountAdmins(ctx, groupID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperr.Validation(ReasonLastAdminDemote)
			}
		}
		if err := s.groups.UpdateMemberRole(ctx, groupID, targetID, r); err != nil {
			return err
		}
		target.Role = r
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toMemberDTO(updated), nil
}

// DeleteGroup 删除小组及其成员、邀请、任务
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, actorID uint) error {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return err
	}
	if _, err := requireAdmin(ctx, s.groups, groupID, actorID, ReasonAdminDeleteGroup); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, groupID); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "group deleted", zap.Uint("group_id", groupID), zap.Uint("actor_id", actorID))
	return nil
}
