package setup

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/3Eeeecho/go-secureprint/internal/config"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/storage"
)

// InitStorage 按 storage.type 初始化存储服务并确保存储桶存在
// mongoClient 仅在 gridfs 模式下使用
func InitStorage(cfg *config.Config, mongoClient *mongo.Client) (storage.StorageService, error) {
	var (
		svc storage.StorageService
		err error
	)
	switch cfg.Storage.Type {
	case "gridfs":
		if mongoClient == nil {
			return nil, fmt.Errorf("gridfs 存储需要 MongoDB 连接")
		}
		svc = storage.NewGridFSStorageService(mongoClient.Database(cfg.Mongo.Database))
	default:
		svc, err = storage.NewStorageService(cfg)
		if err != nil {
			return nil, fmt.Errorf("初始化存储服务失败: %w", err)
		}
	}
	logger.Info("存储服务已选择并初始化", zap.String("type", cfg.Storage.Type))

	if err := ensureBucket(svc, storage.BucketName(cfg)); err != nil {
		return nil, err
	}
	return svc, nil
}

// ensureBucket 检查并创建存储桶
func ensureBucket(svc storage.StorageService, bucketName string) error {
	// 为外部调用使用带超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := svc.IsBucketExist(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶存在性失败: %w", err)
	}
	if exists {
		logger.Info("存储桶已存在", zap.String("bucketName", bucketName))
		return nil
	}

	logger.Info("存储桶不存在，尝试创建...", zap.String("bucketName", bucketName))
	if err := svc.MakeBucket(ctx, bucketName); err != nil {
		return fmt.Errorf("创建存储桶失败: %w", err)
	}
	return nil
}
