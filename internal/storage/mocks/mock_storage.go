package mocks

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"paperapi/internal/storage"
)

// MockStorage mocks object I/O. PublicURL and Locate are deterministic so tests need no expectations for them.
type MockStorage struct {
	mock.Mock
}

const PublicBase = "https://cdn.test/storage/v1/object/public"

func (m *MockStorage) Put(ctx context.Context, bucket, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key, r, opt)
	if f, ok := args.Get(0).(func(context.Context, string, string, io.Reader, storage.PutObjectOptions) storage.ObjectInfo); ok {
		return f(ctx, bucket, key, r, opt), args.Error(1)
	}
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockStorage) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
}

func (m *MockStorage) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) PublicURL(bucket, key string) string {
	return PublicBase + "/" + bucket + "/" + key
}

func (m *MockStorage) Locate(publicURL string) (string, string, bool) {
	rest, found := strings.CutPrefix(publicURL, PublicBase+"/")
	if !found {
		return "", "", false
	}
	bucket, key, ok := strings.Cut(rest, "/")
	return bucket, key, ok
}
