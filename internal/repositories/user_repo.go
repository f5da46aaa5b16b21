package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/3Eeeecho/go-secureprint/internal/models"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

var _ UserRepository = (*userRepository)(nil)

// NewUserRepository 创建一个新的 UserRepository 实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateUser 邮箱重复时返回 gorm.ErrDuplicatedKey (需开启 TranslateError)
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		logger.Error("Error creating user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail 用户不存在时返回 nil, nil
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Error getting user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}
