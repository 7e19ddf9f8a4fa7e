package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/services"
)

type TagHandler struct {
	svc services.TagService
}

func NewTagHandler(svc services.TagService) *TagHandler {
	return &TagHandler{svc: svc}
}

type TopicHandler struct {
	svc services.TopicService
}

func NewTopicHandler(svc services.TopicService) *TopicHandler {
	return &TopicHandler{svc: svc}
}

type lookupCreateRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Position int    `json:"order"`
}

type lookupUpdateRequest struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	Position *int    `json:"order"`
}

func lookupFilterFromQuery(c *gin.Context) repos.LookupFilter {
	return repos.LookupFilter{
		Query:  c.Query("q"),
		Sort:   c.Query("sort"),
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	}
}

// GET /api/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.svc.List(c.Request.Context(), lookupFilterFromQuery(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"tags": tags})
}

// GET /api/tags/:id
func (h *TagHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tag, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, tag)
}

// POST /api/tags
func (h *TagHandler) Create(c *gin.Context) {
	var req lookupCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	tag, err := h.svc.Create(c.Request.Context(), services.CreateLookupInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Position: req.Position,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, tag)
}

// PUT/PATCH /api/tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req lookupUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	tag, err := h.svc.Update(c.Request.Context(), id, services.UpdateLookupInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Position: req.Position,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, tag)
}

// DELETE /api/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
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

// GET /api/topics
func (h *TopicHandler) List(c *gin.Context) {
	topics, err := h.svc.List(c.Request.Context(), lookupFilterFromQuery(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"topics": topics})
}

// GET /api/topics/:id
func (h *TopicHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	topic, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, topic)
}

// POST /api/topics
func (h *TopicHandler) Create(c *gin.Context) {
	var req lookupCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	topic, err := h.svc.Create(c.Request.Context(), services.CreateLookupInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Position: req.Position,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, topic)
}

// PUT/PATCH /api/topics/:id
func (h *TopicHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req lookupUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	topic, err := h.svc.Update(c.Request.Context(), id, services.UpdateLookupInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Position: req.Position,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, topic)
}

// DELETE /api/topics/:id
func (h *TopicHandler) Delete(c *gin.Context) {
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
