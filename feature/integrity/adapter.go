package integrity

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"upload-manager/core/reconcile"
	"upload-manager/feature/uploadedfiles"
	"upload-manager/feature/users"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// listConcurrency bounds the per-owner prefix listings run in parallel.
const listConcurrency = 4

// Objects is the slice of the media storage the reconciliation needs.
type Objects interface {
	Ls(ctx context.Context, prefix string) ([]string, error)
	ObjExists(ctx context.Context, key string) (bool, error)
	DeleteObj(ctx context.Context, key string) error
}

// fileRecord is the minimal projection of an uploaded file record.
type fileRecord struct {
	ID       uint
	Fname    string
	Fsize    int64
	Username string
}

// UploadsAdapter reconciles uploaded file records against the objects under each
// user's upload prefix.
type UploadsAdapter struct {
	db      *gorm.DB
	objects Objects
}

// NewUploadsAdapter creates a new uploads adapter.
func NewUploadsAdapter(db *gorm.DB, objects Objects) *UploadsAdapter {
	return &UploadsAdapter{db: db, objects: objects}
}

// Name returns the unique name of this adapter.
func (a *UploadsAdapter) Name() string {
	return "uploadedfiles"
}

func (a *UploadsAdapter) records(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).
		Table(uploadedfiles.UploadedFile{}.TableName()+" AS f").
		Select("f.id, f.fname, f.fsize, u.username").
		Joins("JOIN " + users.User{}.TableName() + " AS u ON u.id = f.owner_id")
}

// LoadDBIndex loads every uploaded file record keyed by its file name.
func (a *UploadsAdapter) LoadDBIndex(ctx context.Context) (map[string]reconcile.DBItem, error) {
	var rows []fileRecord
	if err := a.records(ctx).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query uploaded files: %w", err)
	}

	index := make(map[string]reconcile.DBItem, len(rows))
	for _, row := range rows {
		index[row.Fname] = row
	}
	return index, nil
}

// LoadStorageSet lists the upload prefix of every user. Objects of users that no
// longer exist are out of reach and not reported.
func (a *UploadsAdapter) LoadStorageSet(ctx context.Context) (map[string]struct{}, error) {
	var usernames []string
	if err := a.db.WithContext(ctx).Model(&users.User{}).Order("id").Pluck("username", &usernames).Error; err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	set := make(map[string]struct{})
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for _, username := range usernames {
		prefix := uploadedfiles.UploadPrefix(username)
		g.Go(func() error {
			keys, err := a.objects.Ls(gctx, prefix)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", prefix, err)
			}
			mu.Lock()
			for _, key := range keys {
				set[key] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

// QueryDB looks up the record of a single file name.
func (a *UploadsAdapter) QueryDB(ctx context.Context, key string) (reconcile.DBItem, error) {
	var rows []fileRecord
	if err := a.records(ctx).Where("f.fname = ?", key).Limit(1).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query uploaded file %s: %w", key, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// CheckStorage checks if the object exists.
func (a *UploadsAdapter) CheckStorage(ctx context.Context, key string) (bool, error) {
	return a.objects.ObjExists(ctx, key)
}

// GetMetadata exposes the record id, owner and size.
func (a *UploadsAdapter) GetMetadata(item reconcile.DBItem) map[string]string {
	rec, ok := item.(fileRecord)
	if !ok {
		return nil
	}
	return map[string]string{
		"id":    strconv.FormatUint(uint64(rec.ID), 10),
		"owner": rec.Username,
		"fsize": strconv.FormatInt(rec.Fsize, 10),
	}
}

// DeleteDB removes the record of a file name.
func (a *UploadsAdapter) DeleteDB(ctx context.Context, key string) error {
	return a.DeleteDBBatch(ctx, []string{key})
}

// DeleteDBBatch removes the records of many file names in one statement.
func (a *UploadsAdapter) DeleteDBBatch(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).Where("fname IN ?", keys).Delete(&uploadedfiles.UploadedFile{}).Error
}

// DeleteStorage removes an object.
func (a *UploadsAdapter) DeleteStorage(ctx context.Context, key string) error {
	return a.objects.DeleteObj(ctx, key)
}
