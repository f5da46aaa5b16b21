package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/storage"
)

var ErrObjectNotFound = errors.New("object not found")

type memObject struct {
	data []byte
}

// MemoryStorage 进程内的 StorageService, 供测试使用
type MemoryStorage struct {
	mu      sync.Mutex
	objects map[string]memObject

	PutErr error // 非 nil 时 PutObject 直接失败
	GetErr error // 非 nil 时 GetObject 直接失败

	streamErr   error
	streamAfter int
}

var _ storage.StorageService = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memObject)}
}

// FailStream 让之后的读取在返回 after 个字节后报 err, 模拟传输中断. after <= 0 表示读完全部内容后报错
// 对象大小仍按完整内容报告
func (m *MemoryStorage) FailStream(err error, after int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamErr = err
	m.streamAfter = after
}

func key(bucketName, objectName string) string {
	return bucketName + "/" + objectName
}

func (m *MemoryStorage) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) (storage.PutObjectResult, error) {
	if m.PutErr != nil {
		return storage.PutObjectResult{}, m.PutErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return storage.PutObjectResult{}, err
	}
	m.mu.Lock()
	m.objects[key(bucketName, objectName)] = memObject{data: data}
	m.mu.Unlock()
	return storage.PutObjectResult{Bucket: bucketName, Key: objectName, Size: int64(len(data))}, nil
}

func (m *MemoryStorage) GetObject(ctx context.Context, bucketName, objectKey string) (storage.GetObjectResult, error) {
	if m.GetErr != nil {
		return storage.GetObjectResult{}, m.GetErr
	}
	m.mu.Lock()
	obj, ok := m.objects[key(bucketName, objectKey)]
	streamErr, after := m.streamErr, m.streamAfter
	m.mu.Unlock()
	if !ok {
		return storage.GetObjectResult{}, ErrObjectNotFound
	}

	var r io.Reader = bytes.NewReader(obj.data)
	if streamErr != nil {
		n := len(obj.data)
		if after > 0 && after < n {
			n = after
		}
		r = io.MultiReader(bytes.NewReader(obj.data[:n]), &errReader{err: streamErr})
	}
	return storage.GetObjectResult{
		Reader: io.NopCloser(r),
		Size:   int64(len(obj.data)),
	}, nil
}

func (m *MemoryStorage) RemoveObject(ctx context.Context, bucketName, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key(bucketName, objectKey))
	return nil
}

func (m *MemoryStorage) IsBucketExist(ctx context.Context, bucketName string) (bool, error) {
	return true, nil
}

func (m *MemoryStorage) MakeBucket(ctx context.Context, bucketName string) error {
	return nil
}

// Len 返回当前保存的对象数量
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type errReader struct{ err error }

func (r *errReader) Read([]byte) (int, error) { return 0, r.err }
