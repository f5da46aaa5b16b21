package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/models"
	"gorm.io/gorm"
)

type LinkRepository interface {
	Create(ctx context.Context, link *models.LinkGrant) error
	FindByID(ctx context.Context, id string) (*models.LinkGrant, error)
	// MarkValidated 无条件写入 validated=true 与 validated_at, 重复调用会覆盖 validated_at
	MarkValidated(ctx context.Context, id string, at time.Time) error
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository 创建新的 linkRepository 实例
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *models.LinkGrant) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("创建链接记录失败: %w", err)
	}
	return nil
}

// FindByID 记录不存在时返回 nil, nil
func (r *linkRepository) FindByID(ctx context.Context, id string) (*models.LinkGrant, error) {
	var link models.LinkGrant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询链接失败: %w", err)
	}
	return &link, nil
}

func (r *linkRepository) MarkValidated(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.LinkGrant{}).
		Where("id = ?", id).
		Updates(map[string]any{"validated": true, "validated_at": at})
	if res.Error != nil {
		return fmt.Errorf("更新链接验证状态失败: %w", res.Error)
	}
	return nil
}
