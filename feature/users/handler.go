package users

import (
	"errors"

	"upload-manager/core/logger"
	"upload-manager/core/middleware/auth"
	"upload-manager/core/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for users.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the user routes. Registration is public, everything else
// goes through authn.
func (h *Handler) RegisterRoutes(app fiber.Router, authn fiber.Handler) {
	group := app.Group("/api/v1/users")
	group.Post("/", h.HandleCreate)
	group.Get("/", authn, h.HandleList)
	group.Get("/:id", authn, h.HandleGet)
	group.Put("/:id", authn, h.HandleUpdate)
}

// HandleCreate registers a user.
// @Summary Create User
// @Description Registers a new account. The password is stored as a bcrypt hash.
// @Tags users
// @Accept json
// @Produce json
// @Param user body CreateInput true "New user"
// @Success 201 {object} Resource
// @Failure 400 {object} map[string][]string "Validation errors"
// @Router /api/v1/users/ [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	user, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user.ToResource(c.BaseURL()))
}

// HandleList lists users.
// @Summary List Users
// @Tags users
// @Produce json
// @Security BasicAuth
// @Success 200 {array} Resource
// @Failure 401 {object} map[string]string "Unauthenticated"
// @Router /api/v1/users/ [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}

	out := make([]Resource, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToResource(c.BaseURL()))
	}
	return c.JSON(out)
}

// HandleGet returns one user.
// @Summary Get User
// @Tags users
// @Produce json
// @Security BasicAuth
// @Param id path int true "User ID"
// @Success 200 {object} Resource
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/users/{id}/ [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return h.respondError(c, ErrNotFound)
	}

	user, err := h.service.Get(c.UserContext(), uint(id))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(user.ToResource(c.BaseURL()))
}

// HandleUpdate changes the caller's email and password.
// @Summary Update User
// @Description Updates email and password of the authenticated user. The username is kept.
// @Tags users
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param id path int true "User ID"
// @Param user body UpdateInput true "New email and password"
// @Success 200 {object} Resource
// @Failure 400 {object} map[string][]string "Validation errors"
// @Failure 403 {object} map[string]string "Not the account owner"
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/users/{id}/ [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return h.respondError(c, ErrNotFound)
	}

	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	user, err := h.service.Update(c.UserContext(), auth.Username(c), uint(id), in)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(user.ToResource(c.BaseURL()))
}

func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	if verr, ok := validation.AsErrors(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found."})
	case errors.Is(err, ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	logger.WithRayID(h.service.logger, c).Error("User request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
