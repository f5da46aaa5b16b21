package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrInvalidObjectKey GridFS 对象标识必须是 24 位十六进制 ObjectID
var ErrInvalidObjectKey = errors.New("invalid gridfs object key")

// GridFSStorageService 把文件保存在 MongoDB GridFS 中, bucketName 对应 GridFS bucket 前缀
type GridFSStorageService struct {
	db *mongo.Database
}

var _ StorageService = (*GridFSStorageService)(nil)

func NewGridFSStorageService(db *mongo.Database) *GridFSStorageService {
	logger.Info("GridFS 存储初始化成功", zap.String("database", db.Name()))
	return &GridFSStorageService{db: db}
}

func (s *GridFSStorageService) bucket(ctx context.Context, bucketName string) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("打开 GridFS bucket 失败: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = b.SetReadDeadline(deadline)
		_ = b.SetWriteDeadline(deadline)
	}
	return b, nil
}

// PutObject 上传后以 GridFS 生成的 ObjectID 作为 Key, objectName 仅作为文件名保存
func (s *GridFSStorageService) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) (PutObjectResult, error) {
	b, err := s.bucket(ctx, bucketName)
	if err != nil {
		return PutObjectResult{}, err
	}

	counter := &countingReader{r: reader}
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "contentType", Value: contentType},
		{Key: "uploadedAt", Value: time.Now()},
	})
	id, err := b.UploadFromStream(objectName, counter, opts)
	if err != nil {
		return PutObjectResult{}, fmt.Errorf("GridFS 上传文件失败: %w", err)
	}

	return PutObjectResult{
		Bucket: bucketName,
		Key:    id.Hex(),
		Size:   counter.n,
	}, nil
}

func (s *GridFSStorageService) GetObject(ctx context.Context, bucketName, objectKey string) (GetObjectResult, error) {
	id, err := primitive.ObjectIDFromHex(objectKey)
	if err != nil {
		return GetObjectResult{}, ErrInvalidObjectKey
	}
	b, err := s.bucket(ctx, bucketName)
	if err != nil {
		return GetObjectResult{}, err
	}

	stream, err := b.OpenDownloadStream(id)
	if err != nil {
		return GetObjectResult{}, fmt.Errorf("GridFS 获取文件失败: %w", err)
	}

	result := GetObjectResult{Reader: stream, Size: -1}
	if file := stream.GetFile(); file != nil {
		result.Size = file.Length
	}
	return result, nil
}

func (s *GridFSStorageService) RemoveObject(ctx context.Context, bucketName, objectKey string) error {
	id, err := primitive.ObjectIDFromHex(objectKey)
	if err != nil {
		return ErrInvalidObjectKey
	}
	b, err := s.bucket(ctx, bucketName)
	if err != nil {
		return err
	}
	if err := b.Delete(id); err != nil {
		return fmt.Errorf("GridFS 删除文件失败: %w", err)
	}
	return nil
}

// IsBucketExist GridFS 的 files/chunks 集合在首次写入时自动创建
func (s *GridFSStorageService) IsBucketExist(ctx context.Context, bucketName string) (bool, error) {
	return true, nil
}

func (s *GridFSStorageService) MakeBucket(ctx context.Context, bucketName string) error {
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
