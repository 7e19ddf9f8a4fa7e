package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/requestdata"
	"github.com/opencourse/opencourse-backend/internal/services"
	"github.com/opencourse/opencourse-backend/internal/types"
	"github.com/opencourse/opencourse-backend/internal/views"
)

type CourseHandler struct {
	log             *logger.Logger
	courseService   services.CourseService
	progressService services.ProgressService
}

func NewCourseHandler(
	log *logger.Logger,
	courseService services.CourseService,
	progressService services.ProgressService,
) *CourseHandler {
	return &CourseHandler{
		log:             log.With("handler", "CourseHandler"),
		courseService:   courseService,
		progressService: progressService,
	}
}

type courseCreateRequest struct {
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
	Description   string         `json:"description"`
	Published     bool           `json:"published"`
	Position      int            `json:"order"`
	Metadata      datatypes.JSON `json:"metadata"`
	TagIDs        []uuid.UUID    `json:"tag_ids"`
	TopicIDs      []uuid.UUID    `json:"topic_ids"`
	InstructorIDs []uuid.UUID    `json:"instructor_ids"`
}

type courseUpdateRequest struct {
	Name          *string        `json:"name"`
	Slug          *string        `json:"slug"`
	Description   *string        `json:"description"`
	Published     *bool          `json:"published"`
	Position      *int           `json:"order"`
	Metadata      datatypes.JSON `json:"metadata"`
	TagIDs        []uuid.UUID    `json:"tag_ids"`
	TopicIDs      []uuid.UUID    `json:"topic_ids"`
	InstructorIDs []uuid.UUID    `json:"instructor_ids"`
}

func courseFilterFromQuery(c *gin.Context) repos.CourseFilter {
	filter := repos.CourseFilter{
		TagSlug:   c.Query("tag"),
		TopicSlug: c.Query("topic"),
		Query:     c.Query("q"),
		Sort:      c.Query("sort"),
		Limit:     queryInt(c, "limit", 20),
		Offset:    queryInt(c, "offset", 0),
	}
	if raw := c.Query("published"); raw != "" {
		published := raw == "true" || raw == "1"
		filter.Published = &published
	}
	return filter
}

// GET /api/courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courseService.ListTree(c.Request.Context(), courseFilterFromQuery(c))
	if err != nil {
		h.log.Error("List courses failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	out := make([]views.CourseFull, 0, len(courses))
	for _, course := range courses {
		view, err := h.fullView(c, course)
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		out = append(out, view)
	}
	RespondOK(c, gin.H{"courses": out})
}

// GET /api/courses/featured
func (h *CourseHandler) Featured(c *gin.Context) {
	published := true
	filter := repos.CourseFilter{
		Published: &published,
		Sort:      c.Query("sort"),
		Limit:     queryInt(c, "limit", 20),
		Offset:    queryInt(c, "offset", 0),
	}
	courses, err := h.courseService.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("List featured courses failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	out := make([]views.CourseMinimal, 0, len(courses))
	for _, course := range courses {
		out = append(out, views.NewCourseMinimal(course))
	}
	RespondOK(c, gin.H{"courses": out, "limit": filter.Limit, "offset": filter.Offset})
}

// GET /api/courses/:id
// With ?fields=... the response is the dynamically projected course;
// otherwise the full nested view.
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	course, err := h.courseService.GetTree(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if fields := queryFields(c); fields != nil {
		RespondOK(c, views.NewCourseDynamic(course, fields))
		return
	}
	view, err := h.fullView(c, course)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *CourseHandler) fullView(c *gin.Context, course *types.Course) (views.CourseFull, error) {
	ctx := c.Request.Context()
	total, err := h.courseService.TotalLessons(ctx, course.ID)
	if err != nil {
		return views.CourseFull{}, err
	}
	var completion *float64
	if userID := requestdata.UserID(ctx); userID != uuid.Nil {
		pct, err := h.progressService.CompletionPercentage(ctx, userID, course.ID)
		if err != nil {
			return views.CourseFull{}, err
		}
		completion = &pct
	}
	return views.NewCourseFull(course, total, completion), nil
}

// POST /api/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req courseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	course, err := h.courseService.Create(c.Request.Context(), services.CreateCourseInput{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Published:     req.Published,
		Position:      req.Position,
		Metadata:      req.Metadata,
		TagIDs:        req.TagIDs,
		TopicIDs:      req.TopicIDs,
		InstructorIDs: req.InstructorIDs,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	view, err := h.fullView(c, course)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, view)
}

// PUT/PATCH /api/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req courseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	course, err := h.courseService.Update(c.Request.Context(), id, services.UpdateCourseInput{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Published:     req.Published,
		Position:      req.Position,
		Metadata:      req.Metadata,
		TagIDs:        req.TagIDs,
		TopicIDs:      req.TopicIDs,
		InstructorIDs: req.InstructorIDs,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	view, err := h.fullView(c, course)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

// DELETE /api/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/courses/:id/publish
func (h *CourseHandler) Publish(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.courseService.Publish(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "published"})
}
