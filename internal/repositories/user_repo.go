package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Gopher0727/StudyConnect/internal/models"
)

const (
	userCacheKeyPrefix = "user:info:" // Redis String, 值是 user JSON
	userCacheTTL       = 1 * time.Hour

	ReasonUserNotFound = "User not found"
)

// UserRepository 用户仓储，GetByID 走 Redis 缓存
type UserRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewUserRepository 创建用户仓储实例，redis 可以为 nil
func NewUserRepository(db *gorm.DB, redis *redis.Client) *UserRepository {
	return &UserRepository{db: db, redis: redis}
}

func userCacheKey(id uint) string {
	return fmt.Sprintf("%s%d", userCacheKeyPrefix, id)
}

// cachedUser 缓存专用结构，PasswordHash 不参与 json 序列化
type cachedUser struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(conn(ctx, r.db).Create(user).Error, "create user", ReasonUserNotFound)
}

// GetByID 根据 ID 获取用户 (带缓存)
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if r.redis != nil {
		val, err := r.redis.Get(ctx, userCacheKey(id)).Bytes()
		if err == nil {
			var cached cachedUser
			if json.Unmarshal(val, &cached) == nil {
				user := cached.User
				user.PasswordHash = cached.PasswordHash
				return &user, nil
			}
		}
	}

	var user models.User
	if err := conn(ctx, r.db).First(&user, id).Error; err != nil {
		return nil, translate(err, "get user", ReasonUserNotFound)
	}

	// 回填 Redis，失败不影响读取
	if r.redis != nil {
		if data, err := json.Marshal(cachedUser{User: user, PasswordHash: user.PasswordHash}); err == nil {
			r.redis.Set(ctx, userCacheKey(id), data, userCacheTTL)
		}
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户，邮箱以小写形式存储
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "get user by email", ReasonUserNotFound)
	}
	return &user, nil
}

// GetByIDs 批量获取用户，结果按 ID 索引，不存在的 ID 不出现在结果中
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error) {
	result := make(map[uint]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []models.User
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}

// ExistsByEmail 检查邮箱是否存在
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

// Update 更新用户 (同时清除缓存)
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := conn(ctx, r.db).Save(user).Error; err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	r.invalidate(ctx, user.ID)
	return nil
}

func (r *UserRepository) invalidate(ctx context.Context, id uint) {
	if r.redis != nil {
		r.redis.Del(ctx, userCacheKey(id))
	}
}
