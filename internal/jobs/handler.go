package jobs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobfit-backend/internal/shared/server/middleware"
	"jobfit-backend/internal/shared/server/respond"
	"jobfit-backend/internal/users"
)

// Handler serves the job board endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler wires a Handler to svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes exposes the public board plus authenticated writes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/:id", h.get)
	rg.POST("/jobs", middleware.RequireAuth(), h.create)
	rg.PUT("/jobs/:id", middleware.RequireAuth(), h.update)
	rg.DELETE("/jobs/:id", middleware.RequireAuth(), h.delete)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.ListActive(c.Request.Context(), Filter{
		Query:    c.Query("q"),
		Skill:    c.Query("skill"),
		Location: c.Query("location"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, list)
}

func (h *Handler) get(c *gin.Context) {
	c.Set("jobId", c.Param("id"))
	job, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, job)
}

func (h *Handler) create(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	job, err := h.Svc.Create(c.Request.Context(), actorFrom(c), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set("jobId", job.ID)
	respond.JSON(c, http.StatusCreated, job)
}

func (h *Handler) update(c *gin.Context) {
	c.Set("jobId", c.Param("id"))
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	job, err := h.Svc.Update(c.Request.Context(), actorFrom(c), c.Param("id"), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, job)
}

func (h *Handler) delete(c *gin.Context) {
	c.Set("jobId", c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		UserID: middleware.UserIDFromContext(c),
		Role:   users.ParseRole(middleware.UserRoleFromContext(c)),
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid job", verr.Fields)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrCannotPost):
		respond.Error(c, http.StatusForbidden, "forbidden", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "job request failed", nil)
	}
}
