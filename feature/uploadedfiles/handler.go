package uploadedfiles

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strconv"

	"upload-manager/core/logger"
	"upload-manager/core/middleware/auth"
	"upload-manager/core/validation"
	"upload-manager/feature/users"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Owners resolves the authenticated username to its account.
type Owners interface {
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

// Handler handles HTTP requests for uploaded files.
type Handler struct {
	service *Service
	owners  Owners
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, owners Owners) *Handler {
	return &Handler{service: service, owners: owners}
}

// RegisterRoutes registers the uploaded files routes behind authn.
func (h *Handler) RegisterRoutes(app fiber.Router, authn fiber.Handler) {
	group := app.Group("/api/v1/uploadedfiles", authn)
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleCreate)
	group.Get("/:id", h.HandleGet)
	group.Put("/:id", h.HandleUpdate)
	group.Delete("/:id", h.HandleDelete)
	group.Get("/:id/contents", h.HandleContents)
}

// HandleList lists the caller's files.
// @Summary List Uploaded Files
// @Description Returns the authenticated user's files ordered by name, descending.
// @Tags uploadedfiles
// @Produce json
// @Security BasicAuth
// @Success 200 {array} Resource
// @Failure 401 {object} map[string]string "Unauthenticated"
// @Router /api/v1/uploadedfiles/ [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	owner, err := h.owner(c)
	if err != nil {
		return h.respondError(c, err)
	}

	files, err := h.service.List(c.UserContext(), owner)
	if err != nil {
		return h.respondError(c, err)
	}

	out := make([]Resource, 0, len(files))
	for i := range files {
		out = append(out, files[i].ToResource(c.BaseURL()))
	}
	return c.JSON(out)
}

// HandleCreate uploads a file.
// @Summary Upload File
// @Description Stores the file under upload_path, which must start with '<username>/uploads/'. An existing name gets a random suffix.
// @Tags uploadedfiles
// @Accept multipart/form-data
// @Produce json
// @Security BasicAuth
// @Param upload_path formData string true "Destination path"
// @Param fname formData file true "File contents"
// @Success 201 {object} Resource
// @Failure 400 {object} map[string][]string "Validation errors"
// @Router /api/v1/uploadedfiles/ [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	owner, err := h.owner(c)
	if err != nil {
		return h.respondError(c, err)
	}

	contents, err := formFile(c)
	if err != nil {
		return h.respondError(c, err)
	}

	file, err := h.service.Create(c.UserContext(), owner, c.FormValue("upload_path"), contents)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(file.ToResource(c.BaseURL()))
}

// HandleGet returns one of the caller's files.
// @Summary Get Uploaded File
// @Tags uploadedfiles
// @Produce json
// @Security BasicAuth
// @Param id path int true "File ID"
// @Success 200 {object} Resource
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/uploadedfiles/{id}/ [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	owner, id, err := h.target(c)
	if err != nil {
		return h.respondError(c, err)
	}

	file, err := h.service.Get(c.UserContext(), owner, id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(file.ToResource(c.BaseURL()))
}

// HandleUpdate moves a file, optionally replacing its contents.
// @Summary Update Uploaded File
// @Description Moves the file to upload_path. Without a new file the stored object is copied.
// @Tags uploadedfiles
// @Accept multipart/form-data
// @Produce json
// @Security BasicAuth
// @Param id path int true "File ID"
// @Param upload_path formData string true "Destination path"
// @Param fname formData file false "New contents"
// @Success 200 {object} Resource
// @Failure 400 {object} map[string][]string "Validation errors"
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/uploadedfiles/{id}/ [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	owner, id, err := h.target(c)
	if err != nil {
		return h.respondError(c, err)
	}

	contents, err := formFile(c)
	if err != nil {
		return h.respondError(c, err)
	}

	file, err := h.service.Update(c.UserContext(), owner, id, c.FormValue("upload_path"), contents)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(file.ToResource(c.BaseURL()))
}

// HandleDelete removes a file.
// @Summary Delete Uploaded File
// @Tags uploadedfiles
// @Security BasicAuth
// @Param id path int true "File ID"
// @Success 204
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/uploadedfiles/{id}/ [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	owner, id, err := h.target(c)
	if err != nil {
		return h.respondError(c, err)
	}

	if err := h.service.Delete(c.UserContext(), owner, id); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleContents streams the stored bytes of a file.
// @Summary Download Uploaded File
// @Tags uploadedfiles
// @Produce octet-stream
// @Security BasicAuth
// @Param id path int true "File ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/uploadedfiles/{id}/contents [get]
func (h *Handler) HandleContents(c *fiber.Ctx) error {
	owner, id, err := h.target(c)
	if err != nil {
		return h.respondError(c, err)
	}

	file, data, err := h.service.Contents(c.UserContext(), owner, id)
	if err != nil {
		return h.respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, mimetype.Detect(data).String())
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{
		"filename": path.Base(file.Fname),
	}))
	return c.Send(data)
}

func (h *Handler) owner(c *fiber.Ctx) (*users.User, error) {
	return h.owners.GetByUsername(c.UserContext(), auth.Username(c))
}

func (h *Handler) target(c *fiber.Ctx) (*users.User, uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil || id == 0 {
		return nil, 0, ErrNotFound
	}
	owner, err := h.owner(c)
	if err != nil {
		return nil, 0, err
	}
	return owner, uint(id), nil
}

// formFile reads the "fname" part. A missing part yields nil contents.
func formFile(c *fiber.Ctx) ([]byte, error) {
	header, err := c.FormFile("fname")
	if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return nil, nil
	}
	if err != nil {
		return nil, validation.Field("fname", "The submitted data was not a file.")
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	if verr, ok := validation.AsErrors(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found."})
	case errors.Is(err, users.ErrNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown user."})
	}

	logger.WithRayID(h.service.logger, c).Error("Uploaded file request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
