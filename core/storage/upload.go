package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// UploadReport lists what UploadFiles did with each local file.
type UploadReport struct {
	Uploaded []string `json:"uploaded"`
	Skipped  []string `json:"skipped"`
}

// UploadFiles walks localDir and uploads every regular file. The destination key
// replaces the localDir portion of the path with prefix; with an empty prefix the
// slash-separated local path is used as is. Keys that already exist are skipped.
//
// The walk is not retried as a whole: retries happen per file inside UploadObj, and
// the first file that still fails aborts the walk.
func (s *MediaStorage) UploadFiles(ctx context.Context, localDir, prefix string) (*UploadReport, error) {
	info, err := os.Stat(localDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read local directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", localDir)
	}

	report := &UploadReport{Uploaded: []string{}, Skipped: []string{}}

	err = filepath.WalkDir(localDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		key, err := destinationKey(localDir, p, prefix)
		if err != nil {
			return err
		}

		exists, err := s.ObjExists(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", key, err)
		}
		if exists {
			s.logger.Debug("Skipping existing object", zap.String("key", key))
			report.Skipped = append(report.Skipped, key)
			return nil
		}

		contents, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if _, err := s.UploadObj(ctx, key, contents); err != nil {
			return fmt.Errorf("failed to upload %s: %w", key, err)
		}
		report.Uploaded = append(report.Uploaded, key)
		return nil
	})
	if err != nil {
		return report, err
	}

	s.logger.Info("Directory uploaded",
		zap.String("dir", localDir),
		zap.String("prefix", prefix),
		zap.Int("uploaded", len(report.Uploaded)),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

func destinationKey(localDir, filePath, prefix string) (string, error) {
	if prefix == "" {
		return strings.TrimPrefix(filepath.ToSlash(filePath), "/"), nil
	}
	rel, err := filepath.Rel(localDir, filePath)
	if err != nil {
		return "", err
	}
	return path.Join(prefix, filepath.ToSlash(rel)), nil
}
