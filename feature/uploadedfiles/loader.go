package uploadedfiles

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	authn   fiber.Handler
	db      *gorm.DB
}

// NewFeature creates a new uploaded files feature. authn guards every route.
func NewFeature(db *gorm.DB, store Store, owners Owners, authn fiber.Handler, logger *zap.Logger) *Feature {
	svc := NewService(db, store, logger)
	return &Feature{service: svc, handler: NewHandler(svc, owners), authn: authn, db: db}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "uploadedfiles"
}

// IsEnabled reports whether a database is available.
func (f *Feature) IsEnabled() bool {
	return f.db != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app, f.authn)
	return nil
}
