package integrity

import (
	"context"
	"fmt"

	"upload-manager/core/reconcile"
	"upload-manager/core/storage"
	"upload-manager/feature/integrity/checks"
	"upload-manager/feature/uploadedfiles"
	"upload-manager/feature/users"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Media is the media storage surface the integrity checks use.
type Media interface {
	Objects
	Bucket() string
	Connection(ctx context.Context) (storage.Client, error)
	CreateContainer(ctx context.Context) error
}

// Service handles integrity checks.
type Service struct {
	db     *gorm.DB
	media  Media
	spec   *reconcile.Spec
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(db *gorm.DB, media Media, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	// No CacheTTL: single-key lookups always query the database and the bucket.
	return &Service{
		db:     db,
		media:  media,
		spec:   &reconcile.Spec{Adapter: NewUploadsAdapter(db, media)},
		logger: logger,
	}
}

// CheckStorage reports whether the media bucket exists.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	client, err := s.media.Connection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	return checks.CheckStorage(ctx, client, s.media.Bucket())
}

// FixStorage creates the media bucket.
func (s *Service) FixStorage(ctx context.Context) error {
	s.logger.Info("Creating media bucket", zap.String("bucket", s.media.Bucket()))
	return s.media.CreateContainer(ctx)
}

// CheckSchema compares the users and uploaded files tables with their models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, users.User{}, uploadedfiles.UploadedFile{})
}

// Reconcile compares uploaded file records with stored objects. Mutations only run when
// opts asks for a confirmed, non dry-run purge.
func (s *Service) Reconcile(ctx context.Context, opts reconcile.Options) (*reconcile.Plan, int, error) {
	plan, executed, err := reconcile.ReconcileAndApply(ctx, s.spec, opts)
	if err != nil {
		return plan, executed, err
	}
	s.logger.Info("Reconcile completed",
		zap.Int("total", plan.Summary.TotalItems),
		zap.Int("missing_storage", plan.Summary.MissingStorage),
		zap.Int("missing_db", plan.Summary.MissingDB),
		zap.Int("executed", executed))
	return plan, executed, nil
}

// ReconcileKey reconciles a single object key.
func (s *Service) ReconcileKey(ctx context.Context, key string) (*reconcile.Result, error) {
	return reconcile.ReconcileOne(ctx, s.spec, key)
}

// Apply executes a plan built by Reconcile. It is a no-op unless opts is confirmed and
// not a dry run.
func (s *Service) Apply(ctx context.Context, plan *reconcile.Plan, opts reconcile.Options) (int, error) {
	return reconcile.ApplyPlan(ctx, s.spec, plan, opts)
}
