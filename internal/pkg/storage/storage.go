package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/3Eeeecho/go-secureprint/internal/config"
)

// StorageService 定义了通用的文件存储操作接口
type StorageService interface {
	// 上传文件到指定存储桶, 返回对象信息. Key 即后续读取所用的 blob 标识
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) (PutObjectResult, error)
	// 从指定存储桶下载文件，返回一个读取器和对象信息
	GetObject(ctx context.Context, bucketName, objectKey string) (GetObjectResult, error)
	// 从指定存储桶删除文件
	RemoveObject(ctx context.Context, bucketName, objectKey string) error
	// 检查存储桶是否存在
	IsBucketExist(ctx context.Context, bucketName string) (bool, error)
	// 创建存储桶
	MakeBucket(ctx context.Context, bucketName string) error
}

type PutObjectResult struct {
	Bucket string
	Key    string // 存储后端分配或确认的对象标识
	Size   int64
}

type GetObjectResult struct {
	Reader io.ReadCloser // 文件内容读取器，需要在使用后关闭
	Size   int64         // 未知时为 -1
}

// BucketName 返回当前存储类型对应的存储桶名称
func BucketName(cfg *config.Config) string {
	switch cfg.Storage.Type {
	case "aliyun_oss":
		return cfg.AliyunOSS.BucketName
	case "gridfs":
		return cfg.Mongo.BucketName
	default:
		return cfg.MinIO.BucketName
	}
}

// NewStorageService 按配置选择存储实现. gridfs 需要外部传入已连接的 Mongo 数据库, 见 setup.InitStorage
func NewStorageService(cfg *config.Config) (StorageService, error) {
	switch cfg.Storage.Type {
	case "minio":
		return NewMinIOStorageService(&cfg.MinIO)
	case "aliyun_oss":
		return NewAliyunOSSStorageService(&cfg.AliyunOSS)
	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.Storage.Type)
	}
}
