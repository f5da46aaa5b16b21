package models

import (
	"time"
)

// User 对应 users 表
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // - 表示不输出到 JSON
	Name         string    `gorm:"type:varchar(128);not null;default:''" json:"name"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定 GORM 使用的表名
func (User) TableName() string {
	return "users"
}
