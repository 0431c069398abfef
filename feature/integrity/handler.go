package integrity

import (
	"upload-manager/core/logger"
	"upload-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes behind guard.
func (h *Handler) RegisterRoutes(app fiber.Router, guard fiber.Handler) {
	group := app.Group("/integrity", guard)
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/reconcile", h.HandleReconcile)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs the storage, schema and reconcile checks without mutating anything.
// @Tags integrity
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]interface{})

	if storageReport, err := h.service.CheckStorage(ctx); err != nil {
		report["storage"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["storage"] = storageReport
	}

	if schemaReport, err := h.service.CheckSchema(); err != nil {
		report["schema"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schemaReport
	}

	if plan, _, err := h.service.Reconcile(ctx, reconcile.Options{DryRun: true}); err != nil {
		report["reconcile"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["reconcile"] = plan.Summary
	}

	return c.JSON(report)
}

// HandleStorageCheck checks and optionally creates the media bucket.
// @Summary Check Storage
// @Description Checks that the media bucket exists. Optionally creates it.
// @Tags integrity
// @Produce json
// @Security ApiKeyAuth
// @Param fix query boolean false "Create the bucket when missing"
// @Success 200 {object} checks.StorageReport "Storage Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckStorage(c.Context())
	if err != nil {
		l.Error("Storage check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Exists {
		l.Warn("Media bucket missing", zap.String("bucket", report.Bucket))

		if fix {
			if err := h.service.FixStorage(c.Context()); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to create bucket",
					"details": err.Error(),
				})
			}
			report.Exists = true
		}
	}

	return c.JSON(report)
}

// HandleSchemaCheck checks the database schema.
// @Summary Check Database Schema
// @Description Checks that the users and uploaded files tables match the expected models.
// @Tags integrity
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting schema check")

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(report)
}

// HandleReconcile compares uploaded file records with stored objects.
// @Summary Reconcile Uploaded Files
// @Description Lists records without objects and objects without records. With purge=true and confirm=true both are deleted.
// @Tags integrity
// @Produce json
// @Security ApiKeyAuth
// @Param key query string false "Reconcile a single object key"
// @Param purge query boolean false "Plan deletion of mismatched keys"
// @Param confirm query boolean false "Execute the planned deletions"
// @Success 200 {object} reconcile.Plan "Reconcile Plan"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/reconcile [get]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	ctx := c.Context()

	if key := c.Query("key"); key != "" {
		result, err := h.service.ReconcileKey(ctx, key)
		if err != nil {
			l.Error("Reconcile failed", zap.String("key", key), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(result)
	}

	purge := c.Query("purge") == "true"
	opts := reconcile.Options{
		DoPurge:   purge,
		Confirmed: purge && c.Query("confirm") == "true",
	}

	plan, executed, err := h.service.Reconcile(ctx, opts)
	if err != nil {
		l.Error("Reconcile failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":    err.Error(),
			"executed": executed,
		})
	}

	return c.JSON(fiber.Map{
		"plan":     plan,
		"executed": executed,
	})
}
