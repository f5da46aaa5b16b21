package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/3Eeeecho/go-secureprint/internal/config"
	"github.com/3Eeeecho/go-secureprint/internal/models"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/utils"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/xerr"
	"github.com/3Eeeecho/go-secureprint/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	userRepo repositories.UserRepository
	jwtCfg   config.JWTConfig
}

// 确保authService实现了AuthService的方法
var _ AuthService = (*authService)(nil)

func NewAuthService(userRepo repositories.UserRepository, jwtCfg config.JWTConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

func (s *authService) Signup(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, xerr.ErrInvalidParams
	}

	//检查邮箱是否存在
	existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if existingUser != nil {
		return nil, xerr.ErrUserAlreadyExists
	}

	//哈希密码
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		// bcrypt 只接受 72 字节以内的密码, 超长属于请求参数错误
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, xerr.ErrInvalidParams
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// 并发注册同一邮箱时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, xerr.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in database: %w", err)
	}

	logger.Info("User registered successfully", zap.Uint64("userID", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login 邮箱不存在和密码错误返回同一个错误, 不暴露账号是否存在
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", xerr.ErrInvalidParams
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		return "", xerr.ErrInvalidCredentials
	}

	//验证密码
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return "", xerr.ErrInvalidCredentials
	}

	//生成JWT Token
	tokenString, err := utils.GenerateToken(
		user.ID,
		user.Email,
		s.jwtCfg.SecretKey,
		s.jwtCfg.Issuer,
		s.jwtCfg.ExpiresIn,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}
