package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/utils"
	"github.com/Gopher0727/StudyConnect/internal/validation"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
)

// UserService 用户服务
type UserService struct {
	users UserStore
	clock Clock
	log   *logger.Logger
}

func NewUserService(users UserStore, clock Clock, log *logger.Logger) *UserService {
	return &UserService{users: users, clock: clock, log: log}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Register 注册用户，邮箱统一转为小写存储
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*UserDTO, error) {
	if err := validation.ValidateUser(req.Email, req.Password, req.DisplayName); err != nil {
		return nil, err
	}
	email := validation.NormalizeEmail(req.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict(ReasonEmailTaken)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := newUser(email, hash, req.DisplayName, s.clock.now())
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user registered", zap.Uint("user_id", user.ID))
	return toUserDTO(user), nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*UserDTO, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

// TouchLogin 刷新最近登录时间
func (s *UserService) TouchLogin(ctx context.Context, id uint) (*UserDTO, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.now()
	user.LastLoginAt = &now
	user.Touch(now)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

// UpdateProfileRequest 修改资料请求
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

// UpdateProfile 只能修改自己的资料，显示名规则与注册一致
func (s *UserService) UpdateProfile(ctx context.Context, actorID, userID uint, req *UpdateProfileRequest) (*UserDTO, string, error) {
	if actorID != userID {
		return nil, "", apperr.Permission(ReasonEditOtherUser)
	}
	if err := validation.ValidateDisplayName(req.DisplayName); err != nil {
		return nil, "", err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	now := s.clock.now()
	user.DisplayName = strings.TrimSpace(req.DisplayName)
	user.Touch(now)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", err
	}
	s.log.InfoContext(ctx, "profile updated", zap.Uint("user_id", userID))
	return toUserDTO(user), ReasonProfileSaved, nil
}
