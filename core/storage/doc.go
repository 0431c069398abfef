// Package storage provides the object storage layer for uploaded files.
//
// It wraps the MinIO Go client, which speaks to AWS S3 as well as self-hosted MinIO
// and other S3-compatible providers (including those that still require V2 request
// signing).
//
// # Client Interface
//
// The Client interface is the provider API surface the package consumes, making it easy
// to mock storage interactions in unit tests (see core/storage/mocks, which also ships
// an in-memory implementation).
//
// # MediaStorage
//
// MediaStorage is built once with NewMediaStorage and shared. The first operation dials
// the provider (retried), then creates the configured bucket. From then on it offers:
//
//   - Ls: every key under a prefix, across listing pages.
//   - PathExists / ObjExists: single list call, not retried.
//   - UploadObj, DownloadObj, CopyObj, DeleteObj: retried with a fixed delay.
//   - UploadFiles: recursive upload of a local directory, skipping existing keys.
//
// # Usage
//
//	media := storage.NewMediaStorage(cfg.Storage, logger)
//	_, err := media.UploadObj(ctx, "chris/uploads/test_file1", []byte("hello"))
//	keys, err := media.Ls(ctx, "chris/uploads")
package storage
