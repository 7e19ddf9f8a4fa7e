package views

import (
	"time"

	"github.com/google/uuid"

	"github.com/opencourse/opencourse-backend/internal/types"
)

// EnrollmentView pairs an enrollment with the caller's completion of the
// enrolled course.
type EnrollmentView struct {
	ID              uuid.UUID     `json:"id"`
	Course          CourseMinimal `json:"course"`
	EnrolledAt      time.Time     `json:"enrolled_at"`
	ProgressPercent float64       `json:"progress_percent"`
}

func NewEnrollmentView(e *types.Enrollment, progressPercent float64) EnrollmentView {
	return EnrollmentView{
		ID:              e.ID,
		Course:          NewCourseMinimal(e.Course),
		EnrolledAt:      e.EnrolledAt,
		ProgressPercent: progressPercent,
	}
}
