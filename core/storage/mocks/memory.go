package mocks

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
)

// MemoryClient is an in-memory S3 stand-in. Listing is served in pages of
// ListObjectsOptions.MaxKeys so paging behaviour can be observed.
type MemoryClient struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte

	// Pages counts listing pages served since creation.
	Pages int
	// ListFault, when set, is consulted before each page; a non-nil error is sent on
	// the channel and the listing stops.
	ListFault func(page int) error
}

// NewMemoryClient creates an empty store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{buckets: make(map[string]map[string][]byte)}
}

// Keys returns the sorted keys stored in bucket.
func (m *MemoryClient) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedKeys(bucket, "")
}

func (m *MemoryClient) BucketExists(_ context.Context, bucketName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.buckets[bucketName]
	return ok, nil
}

func (m *MemoryClient) MakeBucket(_ context.Context, bucketName string, _ minio.MakeBucketOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucketName]; ok {
		return minio.ErrorResponse{
			Code:       "BucketAlreadyOwnedByYou",
			BucketName: bucketName,
			StatusCode: http.StatusConflict,
		}
	}
	m.buckets[bucketName] = make(map[string][]byte)
	return nil
}

func (m *MemoryClient) PutObject(_ context.Context, bucketName, objectName string, reader io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucketName]
	if !ok {
		return minio.UploadInfo{}, noSuchBucket(bucketName)
	}
	objects[objectName] = data
	sum := md5.Sum(data)
	return minio.UploadInfo{
		Bucket: bucketName,
		Key:    objectName,
		Size:   int64(len(data)),
		ETag:   hex.EncodeToString(sum[:]),
	}, nil
}

func (m *MemoryClient) GetObject(_ context.Context, bucketName, objectName string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucketName]
	if !ok {
		return nil, noSuchBucket(bucketName)
	}
	data, ok := objects[objectName]
	if !ok {
		return nil, noSuchKey(bucketName, objectName)
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(data))), nil
}

func (m *MemoryClient) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)

	m.mu.Lock()
	keys := m.sortedKeys(bucketName, opts.Prefix)
	fault := m.ListFault
	m.mu.Unlock()

	pageSize := opts.MaxKeys
	if pageSize <= 0 {
		pageSize = 1000
	}

	go func() {
		defer close(ch)
		for page := 0; page*pageSize < len(keys) || page == 0; page++ {
			m.mu.Lock()
			m.Pages++
			m.mu.Unlock()

			if fault != nil {
				if err := fault(page); err != nil {
					select {
					case ch <- minio.ObjectInfo{Err: err}:
					case <-ctx.Done():
					}
					return
				}
			}

			end := min((page+1)*pageSize, len(keys))
			for _, key := range keys[page*pageSize : end] {
				select {
				case ch <- minio.ObjectInfo{Key: key}:
				case <-ctx.Done():
					return
				}
			}
			if end == len(keys) {
				return
			}
		}
	}()
	return ch
}

func (m *MemoryClient) CopyObject(_ context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	srcObjects, ok := m.buckets[src.Bucket]
	if !ok {
		return minio.UploadInfo{}, noSuchBucket(src.Bucket)
	}
	data, ok := srcObjects[src.Object]
	if !ok {
		return minio.UploadInfo{}, noSuchKey(src.Bucket, src.Object)
	}
	dstObjects, ok := m.buckets[dst.Bucket]
	if !ok {
		return minio.UploadInfo{}, noSuchBucket(dst.Bucket)
	}
	dstObjects[dst.Object] = bytes.Clone(data)
	return minio.UploadInfo{Bucket: dst.Bucket, Key: dst.Object, Size: int64(len(data))}, nil
}

func (m *MemoryClient) RemoveObject(_ context.Context, bucketName, objectName string, _ minio.RemoveObjectOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucketName]
	if !ok {
		return noSuchBucket(bucketName)
	}
	delete(objects, objectName)
	return nil
}

func (m *MemoryClient) sortedKeys(bucket, prefix string) []string {
	keys := []string{}
	for key := range m.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func noSuchBucket(bucket string) error {
	return minio.ErrorResponse{Code: "NoSuchBucket", BucketName: bucket, StatusCode: http.StatusNotFound}
}

func noSuchKey(bucket, key string) error {
	return minio.ErrorResponse{Code: "NoSuchKey", BucketName: bucket, Key: key, StatusCode: http.StatusNotFound}
}
