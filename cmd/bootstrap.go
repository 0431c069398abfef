package cmd

import (
	"fmt"

	"upload-manager/core/config"
	"upload-manager/core/database"
	"upload-manager/core/logger"
	"upload-manager/core/metrics"
	"upload-manager/core/storage"
	"upload-manager/feature/uploadedfiles"
	"upload-manager/feature/users"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// models lists every table the application owns, in dependency order.
var models = []any{&users.User{}, &uploadedfiles.UploadedFile{}}

// bootstrap loads the configuration and builds the logger every command starts with.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logg, nil
}

// openDatabase connects and, when enabled, migrates the schema.
func openDatabase(cfg *config.Config, logg *zap.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, models...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return db, nil
}

// newMedia builds the shared media storage. m may be nil.
func newMedia(cfg *config.Config, logg *zap.Logger, m *metrics.Metrics) *storage.MediaStorage {
	return storage.NewMediaStorage(cfg.Storage, logg, storage.WithMetrics(m))
}
