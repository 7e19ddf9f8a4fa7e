package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/services"
)

type ModuleHandler struct {
	svc services.ModuleService
}

func NewModuleHandler(svc services.ModuleService) *ModuleHandler {
	return &ModuleHandler{svc: svc}
}

type moduleCreateRequest struct {
	CourseID    uuid.UUID `json:"course_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Position    int       `json:"order"`
}

type moduleUpdateRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Position    *int    `json:"order"`
}

func moduleFilterFromQuery(c *gin.Context) repos.ModuleFilter {
	filter := repos.ModuleFilter{
		Query:  c.Query("q"),
		Sort:   c.Query("sort"),
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	}
	if raw := c.Query("course_id"); raw != "" {
		if courseID, err := uuid.Parse(raw); err == nil {
			filter.CourseID = courseID
		}
	}
	return filter
}

// GET /api/modules
func (h *ModuleHandler) List(c *gin.Context) {
	modules, err := h.svc.List(c.Request.Context(), moduleFilterFromQuery(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"modules": modules})
}

// GET /api/courses/:id/modules
func (h *ModuleHandler) ListForCourse(c *gin.Context) {
	courseID, ok := pathID(c)
	if !ok {
		return
	}
	modules, err := h.svc.ListForCourse(c.Request.Context(), courseID, moduleFilterFromQuery(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"modules": modules})
}

// GET /api/modules/:id
func (h *ModuleHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	module, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, module)
}

// POST /api/modules
func (h *ModuleHandler) Create(c *gin.Context) {
	h.create(c, uuid.Nil)
}

// POST /api/courses/:id/modules. The route parent overrides the body.
func (h *ModuleHandler) CreateForCourse(c *gin.Context) {
	courseID, ok := pathID(c)
	if !ok {
		return
	}
	h.create(c, courseID)
}

func (h *ModuleHandler) create(c *gin.Context, forceCourseID uuid.UUID) {
	var req moduleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	module, err := h.svc.Create(c.Request.Context(), services.CreateModuleInput{
		CourseID:      req.CourseID,
		ForceCourseID: forceCourseID,
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Position:      req.Position,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, module)
}

// PUT/PATCH /api/modules/:id
func (h *ModuleHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req moduleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	module, err := h.svc.Update(c.Request.Context(), id, services.UpdateModuleInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Position:    req.Position,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, module)
}

// DELETE /api/modules/:id
func (h *ModuleHandler) Delete(c *gin.Context) {
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
