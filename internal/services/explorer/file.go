package explorer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/models"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/storage"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/xerr"
	"github.com/3Eeeecho/go-secureprint/internal/repositories"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sniffLen mimetype 默认读取的头部长度
const sniffLen = 3072

type FileService interface {
	// 先写存储再写元数据
	Upload(ctx context.Context, in UploadInput) (*models.FileRecord, error)
	// ResolveFile 先按 blob id 查找, 未命中且 ref 为数字时再按元数据记录 id 查找
	ResolveFile(ctx context.Context, ref string) (*models.FileRecord, error)
	// OpenBlob 打开文件内容读取流, 调用方负责关闭
	OpenBlob(ctx context.Context, blobID string) (storage.GetObjectResult, error)
}

type UploadInput struct {
	OwnerID     uint64
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type fileService struct {
	fileRepo       repositories.FileRepository
	storageService storage.StorageService
	bucketName     string
	now            func() time.Time
}

var _ FileService = (*fileService)(nil)

// NewFileService 创建一个新的文件服务实例
func NewFileService(
	fileRepo repositories.FileRepository,
	storageService storage.StorageService,
	bucketName string,
) FileService {
	return &fileService{
		fileRepo:       fileRepo,
		storageService: storageService,
		bucketName:     bucketName,
		now:            time.Now,
	}
}

func (s *fileService) Upload(ctx context.Context, in UploadInput) (*models.FileRecord, error) {
	if in.Reader == nil || in.FileName == "" {
		return nil, xerr.ErrFileMissing
	}

	reader, contentType, err := detectContentType(in.Reader, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("读取上传内容失败: %w", err)
	}

	objectName := fmt.Sprintf("%d/%s%s", in.OwnerID, uuid.NewString(), strings.ToLower(path.Ext(in.FileName)))
	put, err := s.storageService.PutObject(ctx, s.bucketName, objectName, reader, in.Size, contentType)
	if err != nil {
		logger.Error("Upload: 写入存储失败", zap.Uint64("ownerID", in.OwnerID), zap.String("object", objectName), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", xerr.ErrStorageError, err)
	}

	length := put.Size
	if length <= 0 {
		length = in.Size
	}
	record := &models.FileRecord{
		BlobID:      put.Key,
		FileName:    in.FileName,
		ContentType: contentType,
		Length:      length,
		OwnerID:     in.OwnerID,
		UploadedAt:  s.now(),
	}

	if err := s.fileRepo.Create(ctx, record); err != nil {
		logger.Error("Upload: 保存文件元数据失败", zap.String("blobID", put.Key), zap.Error(err))
		// 元数据写入失败时清理已写入的对象, 失败只记日志
		if rmErr := s.storageService.RemoveObject(context.WithoutCancel(ctx), s.bucketName, put.Key); rmErr != nil {
			logger.Warn("Upload: 清理孤立对象失败", zap.String("blobID", put.Key), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("%w: %v", xerr.ErrDatabaseError, err)
	}

	logger.Info("Upload: 文件上传成功",
		zap.Uint64("fileID", record.ID),
		zap.String("blobID", record.BlobID),
		zap.Int64("length", record.Length))
	return record, nil
}

func (s *fileService) ResolveFile(ctx context.Context, ref string) (*models.FileRecord, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, xerr.ErrInvalidParams
	}

	// 1. blob id
	file, err := s.fileRepo.FindByBlobID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerr.ErrDatabaseError, err)
	}
	if file != nil {
		return file, nil
	}

	// 2. 元数据记录 id
	if id, parseErr := strconv.ParseUint(ref, 10, 64); parseErr == nil {
		file, err = s.fileRepo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", xerr.ErrDatabaseError, err)
		}
		if file != nil {
			return file, nil
		}
	}

	return nil, xerr.ErrFileNotFound
}

func (s *fileService) OpenBlob(ctx context.Context, blobID string) (storage.GetObjectResult, error) {
	obj, err := s.storageService.GetObject(ctx, s.bucketName, blobID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return storage.GetObjectResult{}, err
		}
		logger.Error("OpenBlob: 读取存储失败", zap.String("blobID", blobID), zap.Error(err))
		return storage.GetObjectResult{}, fmt.Errorf("%w: %v", xerr.ErrStorageError, err)
	}
	return obj, nil
}

// detectContentType 声明的类型缺失或为通用二进制时按内容嗅探, 返回的 reader 仍包含完整内容
func detectContentType(r io.Reader, declared string) (io.Reader, string, error) {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return r, declared, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	head = head[:n]

	return io.MultiReader(bytes.NewReader(head), r), mimetype.Detect(head).String(), nil
}
