package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/models"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	metadataCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "secureprint_metadata_cache_hits_total",
		Help: "Number of file metadata lookups served from the local cache.",
	})
	metadataCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "secureprint_metadata_cache_misses_total",
		Help: "Number of file metadata lookups that went to the database.",
	})
)

// FileRepository 定义文件元数据访问层接口
type FileRepository interface {
	Create(ctx context.Context, file *models.FileRecord) error
	FindByBlobID(ctx context.Context, blobID string) (*models.FileRecord, error)
	FindByID(ctx context.Context, id uint64) (*models.FileRecord, error)
}

type fileRepository struct {
	db    *gorm.DB
	cache *expirable.LRU[string, *models.FileRecord]
}

// NewFileRepository 创建一个新的 FileRepository 实例
// FileRecord 创建后不再变化, 因此可以放心地在本地按 TTL 缓存
func NewFileRepository(db *gorm.DB, cacheSize int, cacheTTL time.Duration) FileRepository {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &fileRepository{
		db:    db,
		cache: expirable.NewLRU[string, *models.FileRecord](cacheSize, nil, cacheTTL),
	}
}

func blobCacheKey(blobID string) string { return "blob:" + blobID }

func idCacheKey(id uint64) string { return "id:" + strconv.FormatUint(id, 10) }

func (r *fileRepository) remember(file *models.FileRecord) {
	r.cache.Add(blobCacheKey(file.BlobID), file)
	r.cache.Add(idCacheKey(file.ID), file)
}

func (r *fileRepository) Create(ctx context.Context, file *models.FileRecord) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		logger.Error("Create: Failed to create file metadata in DB",
			zap.Error(err), zap.Uint64("ownerID", file.OwnerID), zap.String("fileName", file.FileName))
		return fmt.Errorf("failed to create file metadata: %w", err)
	}
	r.remember(file)
	return nil
}

// FindByBlobID 记录不存在时返回 nil, nil
func (r *fileRepository) FindByBlobID(ctx context.Context, blobID string) (*models.FileRecord, error) {
	return r.find(ctx, blobCacheKey(blobID), "blob_id = ?", blobID)
}

// FindByID 记录不存在时返回 nil, nil
func (r *fileRepository) FindByID(ctx context.Context, id uint64) (*models.FileRecord, error) {
	return r.find(ctx, idCacheKey(id), "id = ?", id)
}

func (r *fileRepository) find(ctx context.Context, cacheKey, query string, arg any) (*models.FileRecord, error) {
	if file, ok := r.cache.Get(cacheKey); ok {
		metadataCacheHits.Inc()
		return file, nil
	}
	metadataCacheMisses.Inc()

	var file models.FileRecord
	err := r.db.WithContext(ctx).Where(query, arg).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("find: Failed to query file metadata", zap.String("key", cacheKey), zap.Error(err))
		return nil, fmt.Errorf("failed to query file metadata: %w", err)
	}
	r.remember(&file)
	return &file, nil
}
