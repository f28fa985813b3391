package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/models"
)

const (
	ReasonGroupNotFound  = "Group not found"
	ReasonMemberNotFound = "Member not found"
)

var (
	ErrGroupFull     = apperr.Validation("Group is full")
	ErrAlreadyMember = apperr.Conflict("Already a member")
)

// GroupRepository 学习小组及成员仓储
type GroupRepository struct {
	db *gorm.DB
	tx *TxManager
}

// NewGroupRepository 创建小组仓储实例
func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db, tx: NewTxManager(db)}
}

// Create 创建小组，同时把创建者写入为 ADMIN 成员
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.tx.Transaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.db)
		if err := db.Create(group).Error; err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		member := &models.GroupMember{
			GroupID:  group.ID,
			UserID:   group.CreatedBy,
			Role:     models.RoleAdmin,
			JoinedAt: group.CreatedAt,
		}
		if err := db.Create(member).Error; err != nil {
			return fmt.Errorf("create admin member: %w", err)
		}
		return nil
	})
}

// GetByID 根据ID获取小组
func (r *GroupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := conn(ctx, r.db).First(&group, id).Error; err != nil {
		return nil, translate(err, "get group", ReasonGroupNotFound)
	}
	return &group, nil
}

// LockByID 在当前事务中以 FOR UPDATE 读取小组，串行化同一小组的成员变更
func (r *GroupRepository) LockByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&group, id).Error
	if err != nil {
		return nil, translate(err, "lock group", ReasonGroupNotFound)
	}
	return &group, nil
}

// Update 更新小组
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	if err := conn(ctx, r.db).Save(group).Error; err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// Delete 删除小组，级联删除成员、邀请、小组任务及其评论
func (r *GroupRepository) Delete(ctx context.Context, id uint) error {
	return r.tx.Transaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.db)
		taskIDs := db.Model(&models.Task{}).Select("id").Where("group_id = ?", id)
		steps := []struct {
			name  string
			query *gorm.DB
			model any
		}{
			{"comments", db.Where("task_id IN (?)", taskIDs), &models.Comment{}},
			{"tasks", db.Where("group_id = ?", id), &models.Task{}},
			{"invitations", db.Where("group_id = ?", id), &models.Invitation{}},
			{"members", db.Where("group_id = ?", id), &models.GroupMember{}},
		}
		for _, step := range steps {
			if err := step.query.Delete(step.model).Error; err != nil {
				return fmt.Errorf("delete group %s: %w", step.name, err)
			}
		}
		res := db.Delete(&models.Group{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete group: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(ReasonGroupNotFound)
		}
		return nil
	})
}

// ListPublic 按 ID 返回全部公开小组
func (r *GroupRepository) ListPublic(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := conn(ctx, r.db).Where("visibility = ?", models.VisibilityPublic).Order("id").Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("list public groups: %w", err)
	}
	return groups, nil
}

func (r *GroupRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var groups []models.Group
	if err := conn(ctx, r.db).Where("id IN ?", ids).Order("id").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// CountMembersByGroup 一次查询返回多个小组的成员数，没有成员的小组不出现在结果中
func (r *GroupRepository) CountMembersByGroup(ctx context.Context, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		GroupID uint
		Total   int64
	}
	err := conn(ctx, r.db).Model(&models.GroupMember{}).
		Select("group_id, COUNT(*) AS total").
		Where("group_id IN ?", ids).
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count members by group: %w", err)
	}
	for _, row := range rows {
		counts[row.GroupID] = row.Total
	}
	return counts, nil
}

// FindMembers 按加入时间排序返回成员
func (r *GroupRepository) FindMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := conn(ctx, r.db).Where("group_id = ?", groupID).Order("joined_at, id").Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	return members, nil
}

// GetMember 获取指定成员关系
func (r *GroupRepository) GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := conn(ctx, r.db).Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if err != nil {
		return nil, translate(err, "get member", ReasonMemberNotFound)
	}
	return &member, nil
}

func (r *GroupRepository) CountActiveMembers(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

func (r *GroupRepository) CountAdmins(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.GroupMember{}).
		Where("group_id = ? AND role = ?", groupID, models.RoleAdmin).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check member: %w", err)
	}
	return count > 0, nil
}

// GetUserGroupIDs 获取用户所在的全部小组 ID
func (r *GroupRepository) GetUserGroupIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Order("group_id").
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("get user groups: %w", err)
	}
	return ids, nil
}

// AddMember 锁住小组后重新检查重复成员和人数上限再写入
func (r *GroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	return r.tx.Transaction(ctx, func(ctx context.Context) error {
		group, err := r.LockByID(ctx, member.GroupID)
		if err != nil {
			return err
		}
		exists, err := r.IsMember(ctx, member.GroupID, member.UserID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyMember
		}
		count, err := r.CountActiveMembers(ctx, member.GroupID)
		if err != nil {
			return err
		}
		if count >= int64(group.MaxMembers) {
			return ErrGroupFull
		}
		if err := conn(ctx, r.db).Create(member).Error; err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		return nil
	})
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID uint) error {
	res := conn(ctx, r.db).Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
	if res.Error != nil {
		return fmt.Errorf("remove member: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(ReasonMemberNotFound)
	}
	return nil
}

func (r *GroupRepository) UpdateMemberRole(ctx context.Context, groupID, userID uint, role models.GroupRole) error {
	res := conn(ctx, r.db).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("update member role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(ReasonMemberNotFound)
	}
	return nil
}
