package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencourse/opencourse-backend/internal/requestdata"
	"github.com/opencourse/opencourse-backend/internal/services"
	"github.com/opencourse/opencourse-backend/internal/views"
)

type MeHandler struct {
	userSvc       services.UserService
	enrollmentSvc services.EnrollmentService
	progressSvc   services.ProgressService
}

func NewMeHandler(
	userSvc services.UserService,
	enrollmentSvc services.EnrollmentService,
	progressSvc services.ProgressService,
) *MeHandler {
	return &MeHandler{
		userSvc:       userSvc,
		enrollmentSvc: enrollmentSvc,
		progressSvc:   progressSvc,
	}
}

type updateMeRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}

// GET /api/me
func (h *MeHandler) GetMe(c *gin.Context) {
	user, err := h.userSvc.GetMe(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

// PATCH /api/me/profile
func (h *MeHandler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	user, err := h.userSvc.UpdateMe(c.Request.Context(), services.UpdateMeInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

// POST /api/courses/:id/enroll
func (h *MeHandler) Enroll(c *gin.Context) {
	courseID, ok := pathID(c)
	if !ok {
		return
	}
	enrollment, err := h.enrollmentSvc.Enroll(c.Request.Context(), courseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, enrollment)
}

// GET /api/me/enrollments
func (h *MeHandler) ListMyEnrollments(c *gin.Context) {
	ctx := c.Request.Context()
	enrollments, err := h.enrollmentSvc.ListMine(ctx)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	userID := requestdata.UserID(ctx)
	out := make([]views.EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		pct, err := h.progressSvc.CompletionPercentage(ctx, userID, e.CourseID)
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		out = append(out, views.NewEnrollmentView(e, pct))
	}
	RespondOK(c, gin.H{"enrollments": out})
}
