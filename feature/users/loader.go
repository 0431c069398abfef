package users

import (
	"upload-manager/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	db      *gorm.DB
}

// NewFeature creates a new users feature.
func NewFeature(db *gorm.DB, logger *zap.Logger, opts ...Option) *Feature {
	svc := NewService(db, logger, opts...)
	return &Feature{service: svc, handler: NewHandler(svc), db: db}
}

// Service exposes the user service, which also authenticates requests of other features.
func (f *Feature) Service() *Service {
	return f.service
}

// Authentication returns the HTTP Basic middleware backed by the users table.
func (f *Feature) Authentication() fiber.Handler {
	return auth.New(auth.Config{Authenticator: f.service})
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "users"
}

// IsEnabled reports whether a database is available.
func (f *Feature) IsEnabled() bool {
	return f.db != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app, f.Authentication())
	return nil
}
