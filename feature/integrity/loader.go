package integrity

import (
	"upload-manager/core/middleware/apikey"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	apiKey  string
	db      *gorm.DB
	media   Media
}

// NewFeature creates a new integrity feature. Its routes require apiKey when set.
func NewFeature(db *gorm.DB, media Media, apiKey string, logger *zap.Logger) *Feature {
	svc := NewService(db, media, logger)
	return &Feature{
		service: svc,
		handler: NewHandler(svc),
		apiKey:  apiKey,
		db:      db,
		media:   media,
	}
}

// Service exposes the integrity service to the CLI.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "integrity"
}

// IsEnabled reports whether both the database and the media storage are available.
func (f *Feature) IsEnabled() bool {
	return f.db != nil && f.media != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app, apikey.New(apikey.Config{ApiKey: f.apiKey}))
	return nil
}
