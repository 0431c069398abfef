package uploadedfiles

import (
	"context"
	"errors"
	"fmt"

	"upload-manager/core/validation"
	"upload-manager/feature/users"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned when the file does not exist or belongs to another user.
var ErrNotFound = errors.New("uploaded file not found")

const maxNameAttempts = 10

// Store is the object storage the service keeps file contents in.
// *storage.MediaStorage satisfies it.
type Store interface {
	ObjExists(ctx context.Context, key string) (bool, error)
	UploadObj(ctx context.Context, key string, contents []byte) (minio.UploadInfo, error)
	DownloadObj(ctx context.Context, key string) ([]byte, error)
	CopyObj(ctx context.Context, srcKey, destPath string) error
	DeleteObj(ctx context.Context, key string) error
}

// Service manages uploaded files: one database record and one object per file.
type Service struct {
	db     *gorm.DB
	store  Store
	logger *zap.Logger
}

// NewService creates a new uploaded files service.
func NewService(db *gorm.DB, store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, store: store, logger: logger}
}

// Create stores contents for owner under uploadPath and records it. An existing key
// is never overwritten: an alternative name is picked instead.
func (s *Service) Create(ctx context.Context, owner *users.User, uploadPath string, contents []byte) (*UploadedFile, error) {
	key, err := ValidateUploadPath(owner.Username, uploadPath)
	if err != nil {
		return nil, err
	}
	if contents == nil {
		return nil, validation.Field("fname", "No file was submitted.")
	}

	key, err = s.availableName(ctx, key)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.UploadObj(ctx, key, contents); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", key, err)
	}

	file := &UploadedFile{Fname: key, Fsize: int64(len(contents)), OwnerID: owner.ID}
	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		s.discard(ctx, key)
		return nil, fmt.Errorf("failed to record %s: %w", key, err)
	}

	s.logger.Info("File uploaded", zap.String("key", key), zap.Int64("size", file.Fsize))
	return file, nil
}

// List returns the files of owner ordered by name, descending.
func (s *Service) List(ctx context.Context, owner *users.User) ([]UploadedFile, error) {
	var out []UploadedFile
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", owner.ID).
		Order("fname DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return out, nil
}

// Get returns one file of owner.
func (s *Service) Get(ctx context.Context, owner *users.User, id uint) (*UploadedFile, error) {
	var file UploadedFile
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, owner.ID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return &file, nil
}

// Contents returns a file of owner together with its stored bytes.
func (s *Service) Contents(ctx context.Context, owner *users.User, id uint) (*UploadedFile, []byte, error) {
	file, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.store.DownloadObj(ctx, file.Fname)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", file.Fname, err)
	}
	return file, data, nil
}

// Update moves a file of owner to uploadPath. When contents is nil the stored object
// is copied to the new key; otherwise contents replace it. The old object is removed
// once the record points at the new key.
func (s *Service) Update(ctx context.Context, owner *users.User, id uint, uploadPath string, contents []byte) (*UploadedFile, error) {
	file, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	key, err := ValidateUploadPath(owner.Username, uploadPath)
	if err != nil {
		return nil, err
	}

	oldKey := file.Fname
	size := file.Fsize

	switch {
	case key == oldKey && contents == nil:
		return file, nil
	case key == oldKey:
		if _, err := s.store.UploadObj(ctx, key, contents); err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", key, err)
		}
		file.Fsize = int64(len(contents))
		if err := s.db.WithContext(ctx).Model(file).Update("fsize", file.Fsize).Error; err != nil {
			return nil, fmt.Errorf("failed to record %s: %w", key, err)
		}
		return file, nil
	}

	key, err = s.availableName(ctx, key)
	if err != nil {
		return nil, err
	}

	if contents == nil {
		err = s.store.CopyObj(ctx, oldKey, key)
	} else {
		size = int64(len(contents))
		_, err = s.store.UploadObj(ctx, key, contents)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", key, err)
	}

	err = s.db.WithContext(ctx).Model(file).Updates(map[string]any{"fname": key, "fsize": size}).Error
	if err != nil {
		s.discard(ctx, key)
		return nil, fmt.Errorf("failed to record %s: %w", key, err)
	}
	file.Fname = key
	file.Fsize = size

	if err := s.store.DeleteObj(ctx, oldKey); err != nil {
		// The record is consistent; the stale object is left for the reconcile.
		s.logger.Warn("Failed to remove previous object", zap.String("key", oldKey), zap.Error(err))
	}
	return file, nil
}

// Delete removes a file of owner, record and object. The record is kept when the
// object cannot be removed.
func (s *Service) Delete(ctx context.Context, owner *users.User, id uint) error {
	file, err := s.Get(ctx, owner, id)
	if err != nil {
		return err
	}

	objectDeleted := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(file).Error; err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		if err := s.store.DeleteObj(ctx, file.Fname); err != nil {
			return fmt.Errorf("failed to delete %s: %w", file.Fname, err)
		}
		objectDeleted = true
		return nil
	})
	if err != nil {
		// The object delete cannot be undone, so a failed commit leaves a record
		// without an object until the integrity reconcile removes it.
		if objectDeleted {
			s.logger.Error("Record kept for deleted object",
				zap.String("key", file.Fname),
				zap.Uint("id", file.ID),
				zap.Error(err))
		}
		return err
	}
	s.logger.Info("File deleted", zap.String("key", file.Fname))
	return nil
}

// availableName returns key, or an alternative of it, that is used neither by an
// object nor by a record.
func (s *Service) availableName(ctx context.Context, key string) (string, error) {
	candidate := key
	for i := 0; i < maxNameAttempts; i++ {
		taken, err := s.taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		if candidate, err = AlternativeName(key); err != nil {
			return "", validation.Field("upload_path", err.Error())
		}
	}
	return "", validation.Field("upload_path", fmt.Sprintf("Could not find an available name for '%s'.", key))
}

func (s *Service) taken(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&UploadedFile{}).Where("fname = ?", key).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	if count > 0 {
		return true, nil
	}
	exists, err := s.store.ObjExists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return exists, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.store.DeleteObj(ctx, key); err != nil {
		s.logger.Error("Failed to remove unrecorded object", zap.String("key", key), zap.Error(err))
	}
}
