package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/services"
)

type LessonHandler struct {
	svc         services.LessonService
	progressSvc services.ProgressService
}

func NewLessonHandler(svc services.LessonService, progressSvc services.ProgressService) *LessonHandler {
	return &LessonHandler{svc: svc, progressSvc: progressSvc}
}

type lessonCreateRequest struct {
	ModuleID        uuid.UUID `json:"module_id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Content         string    `json:"content"`
	DurationSeconds int       `json:"duration_seconds"`
	Position        int       `json:"order"`
}

type lessonUpdateRequest struct {
	Name            *string `json:"name"`
	Slug            *string `json:"slug"`
	Content         *string `json:"content"`
	DurationSeconds *int    `json:"duration_seconds"`
	Position        *int    `json:"order"`
}

func lessonFilterFromQuery(c *gin.Context) repos.LessonFilter {
	filter := repos.LessonFilter{
		Query:  c.Query("q"),
		Sort:   c.Query("sort"),
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	}
	if raw := c.Query("module_id"); raw != "" {
		if moduleID, err := uuid.Parse(raw); err == nil {
			filter.ModuleID = moduleID
		}
	}
	if raw := c.Query("course_id"); raw != "" {
		if courseID, err := uuid.Parse(raw); err == nil {
			filter.CourseID = courseID
		}
	}
	return filter
}

// GET /api/lessons
func (h *LessonHandler) List(c *gin.Context) {
	lessons, err := h.svc.List(c.Request.Context(), lessonFilterFromQuery(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"lessons": lessons})
}

// GET /api/modules/:id/lessons
func (h *LessonHandler) ListForModule(c *gin.Context) {
	moduleID, ok := pathID(c)
	if !ok {
		return
	}
	lessons, err := h.svc.ListForModule(c.Request.Context(), moduleID, lessonFilterFromQuery(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"lessons": lessons})
}

// GET /api/lessons/:id
func (h *LessonHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	lesson, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, lesson)
}

// POST /api/lessons
func (h *LessonHandler) Create(c *gin.Context) {
	h.create(c, uuid.Nil)
}

// POST /api/modules/:id/lessons. The route parent overrides the body.
func (h *LessonHandler) CreateForModule(c *gin.Context) {
	moduleID, ok := pathID(c)
	if !ok {
		return
	}
	h.create(c, moduleID)
}

func (h *LessonHandler) create(c *gin.Context, forceModuleID uuid.UUID) {
	var req lessonCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	lesson, err := h.svc.Create(c.Request.Context(), services.CreateLessonInput{
		ModuleID:        req.ModuleID,
		ForceModuleID:   forceModuleID,
		Name:            req.Name,
		Slug:            req.Slug,
		Content:         req.Content,
		DurationSeconds: req.DurationSeconds,
		Position:        req.Position,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, lesson)
}

// PUT/PATCH /api/lessons/:id
func (h *LessonHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req lessonUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	lesson, err := h.svc.Update(c.Request.Context(), id, services.UpdateLessonInput{
		Name:            req.Name,
		Slug:            req.Slug,
		Content:         req.Content,
		DurationSeconds: req.DurationSeconds,
		Position:        req.Position,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, lesson)
}

// DELETE /api/lessons/:id
func (h *LessonHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/lessons/:id/mark-complete
// Requires an authenticated caller; progress is never written anonymously.
func (h *LessonHandler) MarkComplete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.progressSvc.MarkComplete(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "completed"})
}
