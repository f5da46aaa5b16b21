package models

import (
	"time"
)

// FileRecord 对应 files_meta 表, 描述一个已写入存储的文件
// 上传完成后创建, 之后不再修改或删除
type FileRecord struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BlobID      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"fileId"` // 存储后端返回的对象标识
	FileName    string    `gorm:"type:varchar(255);not null" json:"filename"`
	ContentType string    `gorm:"type:varchar(128);not null;default:''" json:"contentType"`
	Length      int64     `gorm:"not null;default:0" json:"length"`
	OwnerID     uint64    `gorm:"not null;index" json:"owner"`
	UploadedAt  time.Time `gorm:"not null" json:"uploadedAt"`
}

// TableName 指定 GORM 使用的表名
func (FileRecord) TableName() string {
	return "files_meta"
}
