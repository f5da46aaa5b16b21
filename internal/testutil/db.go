package testutil

import (
	"fmt"
	"testing"

	"github.com/3Eeeecho/go-secureprint/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB 返回一个迁移完成的内存 SQLite 数据库, 每个测试独立
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库的并发写在多连接下会返回 table is locked, 单连接让并发请求排队执行
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}
