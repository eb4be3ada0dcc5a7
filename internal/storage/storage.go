// Package storage wraps the S3-compatible object store holding paper PDFs, presentations and audio.
// Implementations stream object content and never touch local disk.
package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 to let the backend chunk the upload.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Bucket       string
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a bucket-aware, S3-compatible object storage client.
type Storage interface {
	// Put uploads an object under bucket/key using the provided reader and options.
	Put(ctx context.Context, bucket, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, bucket, key string) error
	// PresignGet returns a time-limited download URL.
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	// PublicURL returns the stable public URL stored on paper rows.
	PublicURL(bucket, key string) string
	// Locate maps a URL produced by PublicURL back to its bucket and key.
	Locate(publicURL string) (bucket, key string, ok bool)
}

func joinPublicURL(base, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

func locate(base, raw string) (string, string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if base == "" || !strings.HasPrefix(raw, prefix) {
		return "", "", false
	}
	rest, err := url.PathUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil {
		return "", "", false
	}
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
