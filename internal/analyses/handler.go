package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobfit-backend/internal/jobs"
	"jobfit-backend/internal/resumes"
	"jobfit-backend/internal/shared/server/middleware"
	"jobfit-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/analysis", middleware.RequireAuth())
	g.POST("/analyze", h.analyze)
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

type analyzeRequest struct {
	ResumeID string `json:"resumeId" binding:"required"`
	JobID    string `json:"jobId" binding:"required"`
}

func (h *Handler) analyze(c *gin.Context) {
	req := analyzeRequest{ResumeID: c.Query("resumeId"), JobID: c.Query("jobId")}
	if req.ResumeID == "" && req.JobID == "" && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BindError(c, err)
			return
		}
	}
	c.Set("resumeId", req.ResumeID)
	c.Set("jobId", req.JobID)

	a, err := h.Svc.Analyze(c.Request.Context(), middleware.UserIDFromContext(c), req.ResumeID, req.JobID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set("analysisId", a.ID)
	respond.JSON(c, http.StatusOK, a)
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	list, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, list)
}

func (h *Handler) get(c *gin.Context) {
	c.Set("analysisId", c.Param("id"))
	a, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, a)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, resumes.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, jobs.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, resumes.ErrForbidden), errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "you do not have access to this resource", nil)
	case errors.Is(err, ErrResumeProcessing):
		respond.Error(c, http.StatusConflict, "resume_processing", err.Error(), nil)
	case errors.Is(err, ErrResumeFailed):
		respond.Error(c, http.StatusUnprocessableEntity, "resume_unreadable", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze resume", nil)
	}
}
