package services

import (
	"context"
	"errors"
	"time"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/models"
)

func newUser(email, hash, displayName string, now time.Time) *models.User {
	return &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// canAccessTask 个人任务只有创建者可见，小组任务对组内成员可见
func canAccessTask(ctx context.Context, groups GroupStore, task *models.Task, userID uint) error {
	if task.IsPersonalTask() {
		if task.CreatedBy != userID {
			return apperr.Permission(ReasonTaskForbidden)
		}
		return nil
	}
	ok, err := groups.IsMember(ctx, *task.GroupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Permission(ReasonTaskForbidden)
	}
	return nil
}

// requireMember 返回成员记录，非成员返回带 reason 的 PermissionDenied
func requireMember(ctx context.Context, groups GroupStore, groupID, userID uint, reason string) (*models.GroupMember, error) {
	member, err := groups.GetMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Permission(reason)
		}
		return nil, err
	}
	return member, nil
}

// requireAdmin 非成员和普通成员都返回带 reason 的 PermissionDenied
func requireAdmin(ctx context.Context, groups GroupStore, groupID, userID uint, reason string) (*models.GroupMember, error) {
	member, err := requireMember(ctx, groups, groupID, userID, reason)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, apperr.Permission(reason)
	}
	return member, nil
}
