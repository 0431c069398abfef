package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"upload-manager/core/metrics"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// MediaStorage is the object store client used for uploaded files.
//
// It owns a lazily dialed provider connection, creates the configured bucket on first
// use and retries list, upload, download, copy and delete operations. Existence checks
// and bucket creation are deliberately not retried.
type MediaStorage struct {
	cfg     Config
	logger  *zap.Logger
	dial    Dialer
	metrics *metrics.Metrics

	mu     sync.Mutex
	client Client
	// bucket is set once the bucket has been created; it doubles as the READY flag.
	bucket string
}

// Option customizes a MediaStorage.
type Option func(*MediaStorage)

// WithDialer replaces the provider client constructor (NewClient by default).
func WithDialer(d Dialer) Option {
	return func(s *MediaStorage) {
		s.dial = d
	}
}

// WithMetrics reports attempts to the given collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *MediaStorage) {
		s.metrics = m
	}
}

// WithClient installs an already dialed provider client.
func WithClient(c Client) Option {
	return func(s *MediaStorage) {
		s.client = c
	}
}

// NewMediaStorage creates an uninitialized media storage. No network call is made
// until Initialize or the first operation.
func NewMediaStorage(cfg Config, logger *zap.Logger, opts ...Option) *MediaStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MediaStorage{
		cfg:    cfg.withDefaults(),
		logger: logger.Named("storage"),
		dial:   NewClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bucket returns the configured bucket name.
func (s *MediaStorage) Bucket() string {
	return s.cfg.Bucket
}

// Ready reports whether the bucket has been created.
func (s *MediaStorage) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bucket != ""
}

// Initialize connects and creates the bucket. Calls after the first success are no-ops.
func (s *MediaStorage) Initialize(ctx context.Context) error {
	_, err := s.ready(ctx)
	return err
}

// Connection returns the memoized provider client, dialing it if needed.
func (s *MediaStorage) Connection(ctx context.Context) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectLocked(ctx)
}

// CreateContainer issues a bucket creation call. A bucket we already own is accepted;
// any other failure is logged and returned without retrying.
func (s *MediaStorage) CreateContainer(ctx context.Context) error {
	client, err := s.Connection(ctx)
	if err != nil {
		return err
	}
	return s.createContainer(ctx, client)
}

func (s *MediaStorage) ready(ctx context.Context) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bucket != "" {
		return s.client, nil
	}

	client, err := s.connectLocked(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.createContainer(ctx, client); err != nil {
		return nil, err
	}

	s.bucket = s.cfg.Bucket
	s.logger.Info("Storage initialized", zap.String("bucket", s.bucket))
	return client, nil
}

func (s *MediaStorage) connectLocked(ctx context.Context) (Client, error) {
	if s.client != nil {
		return s.client, nil
	}

	client, err := withRetry(ctx, s, "connect", "", func() (Client, error) {
		return s.dial(s.cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	s.client = client
	return client, nil
}

func (s *MediaStorage) createContainer(ctx context.Context, client Client) error {
	err := client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region})
	s.metrics.ObserveAttempt("make_bucket", err)
	if err == nil {
		s.logger.Info("Created bucket", zap.String("bucket", s.cfg.Bucket))
		return nil
	}
	if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
		return nil
	}
	s.logger.Error("Failed to create bucket", zap.String("bucket", s.cfg.Bucket), zap.Error(err))
	return err
}

// Ls returns every key under prefix in listing order. An empty prefix returns an
// empty result without contacting the store.
func (s *MediaStorage) Ls(ctx context.Context, prefix string) ([]string, error) {
	if prefix == "" {
		return []string{}, nil
	}
	client, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	return withRetry(ctx, s, "ls", prefix, func() ([]string, error) {
		listCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		keys := []string{}
		opts := minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
			MaxKeys:   s.cfg.PageSize,
		}
		for obj := range client.ListObjects(listCtx, s.bucket, opts) {
			if obj.Err != nil {
				return nil, obj.Err
			}
			if obj.Key != "" {
				keys = append(keys, obj.Key)
			}
		}
		return keys, nil
	})
}

// PathExists reports whether any object key starts with p.
func (s *MediaStorage) PathExists(ctx context.Context, p string) (bool, error) {
	return s.exists(ctx, p)
}

// ObjExists reports whether the one-key listing under key returns any entry. It is
// a prefix check like PathExists: "a/b" is reported present when only "a/bc" exists.
func (s *MediaStorage) ObjExists(ctx context.Context, key string) (bool, error) {
	return s.exists(ctx, key)
}

func (s *MediaStorage) exists(ctx context.Context, p string) (bool, error) {
	client, err := s.ready(ctx)
	if err != nil {
		return false, err
	}

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := minio.ListObjectsOptions{
		Prefix:    p,
		Recursive: true,
		MaxKeys:   1,
	}
	for obj := range client.ListObjects(listCtx, s.bucket, opts) {
		s.metrics.ObserveAttempt("exists", obj.Err)
		if obj.Err != nil {
			return false, obj.Err
		}
		return true, nil
	}
	s.metrics.ObserveAttempt("exists", nil)
	return false, nil
}

// UploadObj writes contents under key, overwriting any existing object, and returns
// the provider's response.
func (s *MediaStorage) UploadObj(ctx context.Context, key string, contents []byte) (minio.UploadInfo, error) {
	client, err := s.ready(ctx)
	if err != nil {
		return minio.UploadInfo{}, err
	}

	opts := minio.PutObjectOptions{
		ContentType: mimetype.Detect(contents).String(),
	}
	if s.cfg.DefaultACL != "" {
		opts.UserMetadata = map[string]string{"x-amz-acl": s.cfg.DefaultACL}
	}

	return withRetry(ctx, s, "upload", key, func() (minio.UploadInfo, error) {
		return client.PutObject(ctx, s.bucket, key, bytes.NewReader(contents), int64(len(contents)), opts)
	})
}

// DownloadObj returns the full payload stored under key.
func (s *MediaStorage) DownloadObj(ctx context.Context, key string) ([]byte, error) {
	client, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	return withRetry(ctx, s, "download", key, func() ([]byte, error) {
		obj, err := client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return nil, err
		}
		defer obj.Close()
		return io.ReadAll(obj)
	})
}

// CopyObj copies srcKey to destPath inside the bucket. A leading slash on destPath is
// ignored.
func (s *MediaStorage) CopyObj(ctx context.Context, srcKey, destPath string) error {
	client, err := s.ready(ctx)
	if err != nil {
		return err
	}

	destKey := strings.TrimPrefix(destPath, "/")
	destination := path.Join("/", s.bucket, destKey)

	_, err = withRetry(ctx, s, "copy", srcKey, func() (minio.UploadInfo, error) {
		return client.CopyObject(ctx,
			minio.CopyDestOptions{Bucket: s.bucket, Object: destKey},
			minio.CopySrcOptions{Bucket: s.bucket, Object: srcKey},
		)
	})
	if err != nil {
		return err
	}
	s.logger.Debug("Copied object", zap.String("source", srcKey), zap.String("destination", destination))
	return nil
}

// DeleteObj removes the object stored under key.
func (s *MediaStorage) DeleteObj(ctx context.Context, key string) error {
	client, err := s.ready(ctx)
	if err != nil {
		return err
	}

	_, err = withRetry(ctx, s, "delete", key, func() (struct{}, error) {
		return struct{}{}, client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	})
	return err
}
