package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/models"
	"github.com/3Eeeecho/go-secureprint/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(blobID string) *models.FileRecord {
	return &models.FileRecord{
		BlobID:      blobID,
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		Length:      128,
		OwnerID:     7,
		UploadedAt:  time.Now().UTC(),
	}
}

func TestFileRepository_CreateAndFind(t *testing.T) {
	repo := NewFileRepository(testutil.NewTestDB(t), 16, time.Minute)
	ctx := context.Background()

	rec := newRecord("7/abc.pdf")
	require.NoError(t, repo.Create(ctx, rec))
	assert.NotZero(t, rec.ID)

	byBlob, err := repo.FindByBlobID(ctx, "7/abc.pdf")
	require.NoError(t, err)
	require.NotNil(t, byBlob)
	assert.Equal(t, rec.ID, byBlob.ID)

	byID, err := repo.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "7/abc.pdf", byID.BlobID)
}

func TestFileRepository_MissReturnsNil(t *testing.T) {
	repo := NewFileRepository(testutil.NewTestDB(t), 16, time.Minute)
	ctx := context.Background()

	rec, err := repo.FindByBlobID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = repo.FindByID(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFileRepository_ServesFromCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFileRepository(db, 16, time.Minute)
	ctx := context.Background()

	rec := newRecord("7/cached.pdf")
	require.NoError(t, repo.Create(ctx, rec))

	// 直接删除数据库中的行, 缓存中的记录仍然可以命中
	require.NoError(t, db.Delete(&models.FileRecord{}, rec.ID).Error)

	got, err := repo.FindByBlobID(ctx, "7/cached.pdf")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)

	// 新实例没有缓存
	fresh := NewFileRepository(db, 16, time.Minute)
	got, err = fresh.FindByBlobID(ctx, "7/cached.pdf")
	require.NoError(t, err)
	assert.Nil(t, got)
}
