package storage

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/3Eeeecho/go-secureprint/internal/config"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"
)

type AliyunOSSStorageService struct {
	client *oss.Client
	cfg    *config.AliyunOSSConfig // 阿里云OSS的配置信息
}

var _ StorageService = (*AliyunOSSStorageService)(nil)

// NewAliyunOSSStorageService 创建并返回一个 AliyunOSSStorageService 实例
func NewAliyunOSSStorageService(cfg *config.AliyunOSSConfig) (*AliyunOSSStorageService, error) {
	// OSS Endpoint 应该包含 http:// 或 https:// 前缀
	ossClient, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		logger.Error("初始化阿里云OSS客户端失败", zap.Error(err))
		return nil, fmt.Errorf("无法初始化阿里云OSS客户端: %w", err)
	}
	logger.Info("阿里云OSS客户端初始化成功", zap.String("endpoint", cfg.Endpoint))
	return &AliyunOSSStorageService{
		client: ossClient,
		cfg:    cfg,
	}, nil
}

// PutObject OSS SDK 不接受 context, 上传前检查一次 ctx 是否已取消
func (s *AliyunOSSStorageService) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) (PutObjectResult, error) {
	if err := ctx.Err(); err != nil {
		return PutObjectResult{}, err
	}
	bucket, err := s.client.Bucket(bucketName)
	if err != nil {
		return PutObjectResult{}, fmt.Errorf("获取OSS存储桶失败: %w", err)
	}

	if err := bucket.PutObject(objectName, reader, oss.ContentType(contentType)); err != nil {
		return PutObjectResult{}, fmt.Errorf("阿里云OSS上传文件失败: %w", err)
	}

	// PutObject 本身不返回大小, 使用调用方传入的尺寸
	return PutObjectResult{
		Bucket: bucketName,
		Key:    objectName,
		Size:   objectSize,
	}, nil
}

// GetObject 对象大小取自 GET 响应头, 不再额外请求一次元数据
func (s *AliyunOSSStorageService) GetObject(ctx context.Context, bucketName, objectKey string) (GetObjectResult, error) {
	if err := ctx.Err(); err != nil {
		return GetObjectResult{}, err
	}
	bucket, err := s.client.Bucket(bucketName)
	if err != nil {
		return GetObjectResult{}, fmt.Errorf("获取OSS存储桶失败: %w", err)
	}

	res, err := bucket.DoGetObject(&oss.GetObjectRequest{ObjectKey: objectKey}, nil)
	if err != nil {
		return GetObjectResult{}, fmt.Errorf("阿里云OSS获取文件失败: %w", err)
	}

	result := GetObjectResult{Reader: res.Response.Body, Size: -1}
	if val := res.Response.Headers.Get(oss.HTTPHeaderContentLength); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			result.Size = size
		}
	}
	return result, nil
}

func (s *AliyunOSSStorageService) RemoveObject(ctx context.Context, bucketName, objectKey string) error {
	bucket, err := s.client.Bucket(bucketName)
	if err != nil {
		return fmt.Errorf("获取OSS存储桶失败: %w", err)
	}
	if err := bucket.DeleteObject(objectKey); err != nil {
		return fmt.Errorf("阿里云OSS删除文件失败: %w", err)
	}
	return nil
}

func (s *AliyunOSSStorageService) IsBucketExist(ctx context.Context, bucketName string) (bool, error) {
	found, err := s.client.IsBucketExist(bucketName)
	if err != nil {
		return false, fmt.Errorf("检查阿里云OSS存储桶存在性失败: %w", err)
	}
	return found, nil
}

func (s *AliyunOSSStorageService) MakeBucket(ctx context.Context, bucketName string) error {
	err := s.client.CreateBucket(bucketName, oss.ACL(oss.ACLPrivate))
	if err != nil {
		if ossErr, ok := err.(oss.ServiceError); ok && (ossErr.Code == "BucketAlreadyExists" || ossErr.Code == "BucketAlreadyOwnedByYou") {
			logger.Info("阿里云OSS存储桶已存在，无需创建", zap.String("bucket", bucketName))
			return nil
		}
		return fmt.Errorf("创建阿里云OSS存储桶失败: %w", err)
	}
	logger.Info("阿里云OSS存储桶创建成功", zap.String("bucket", bucketName))
	return nil
}
