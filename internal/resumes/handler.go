package resumes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobfit-backend/internal/shared/server/middleware"
	"jobfit-backend/internal/shared/server/respond"
)

// multipartOverhead leaves room for form boundaries around the file part.
const multipartOverhead = 1 << 20

// Handler serves the resume endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler wires a Handler to svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts /resumes; every route requires a token.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/resumes", middleware.RequireAuth())
	g.POST("/upload", h.upload)
	g.GET("/my-resumes", h.list)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.maxBytes()+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", ErrTooLarge.Error(), gin.H{"maxBytes": h.Svc.maxBytes()})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > h.Svc.maxBytes() {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", ErrTooLarge.Error(), gin.H{"maxBytes": h.Svc.maxBytes()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	res, err := h.Svc.Upload(c.Request.Context(), userID, fileHeader.Filename, file, middleware.RequestIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Set("resumeId", res.ID)
	status := http.StatusCreated
	if res.Status == StatusProcessing {
		status = http.StatusAccepted
	}
	respond.JSON(c, status, toResponse(res, true))
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.ListByUser(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]ResumeResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toResponse(r, false))
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	res, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(res, true))
}

func (h *Handler) delete(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "you do not have access to this resume", nil)
	case errors.Is(err, ErrUnsupportedType):
		respond.Error(c, http.StatusBadRequest, "unsupported_file_type", err.Error(), gin.H{"allowed": allowedExtensions})
	case errors.Is(err, ErrEmptyFile):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), gin.H{"maxBytes": h.Svc.maxBytes()})
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process resume", nil)
	}
}
