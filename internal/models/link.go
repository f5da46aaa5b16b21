package models

import (
	"time"
)

// LinkGrant 对应 links 表
// 一条带验证码、有时效的文件访问授权, ID 直接用作公开链接中的 token
type LinkGrant struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	FileBlobID   string     `gorm:"type:varchar(64);not null;index" json:"fileId"`
	FileRecordID uint64     `gorm:"not null" json:"-"`
	FileName     string     `gorm:"type:varchar(255);not null" json:"filename"`
	OwnerID      uint64     `gorm:"not null;index" json:"owner"` // 创建时从 FileRecord 复制, 之后不再校验
	OTP          string     `gorm:"column:otp;type:varchar(6);not null" json:"-"`
	CreatedAt    time.Time  `gorm:"not null" json:"createdAt"`
	ExpiresAt    time.Time  `gorm:"not null;index" json:"expiresAt"`
	Validated    bool       `gorm:"not null;default:false" json:"validated"`
	ValidatedAt  *time.Time `gorm:"default:null" json:"validatedAt,omitempty"`
}

// TableName 指定 GORM 使用的表名
func (LinkGrant) TableName() string {
	return "links"
}

// ExpiredAt 判断在 now 时刻链接是否已过期, 到达 ExpiresAt 即视为过期
func (l *LinkGrant) ExpiredAt(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// AllModels 返回需要自动迁移的全部模型
func AllModels() []any {
	return []any{
		&User{},
		&FileRecord{},
		&LinkGrant{},
	}
}
