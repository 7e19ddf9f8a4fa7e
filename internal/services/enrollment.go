package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/requestdata"
	"github.com/opencourse/opencourse-backend/internal/types"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, error)
	ListMine(ctx context.Context) ([]*types.Enrollment, error)
}

type enrollmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.EnrollmentRepo
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	enrollmentRepo repos.EnrollmentRepo,
) EnrollmentService {
	return &enrollmentService{
		db:             db,
		log:            baseLog.With("service", "EnrollmentService"),
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// Enroll creates the (course, user) join exactly once. A second call, or a
// concurrent one that loses the unique-index race, surfaces Conflict.
func (s *enrollmentService) Enroll(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("enrollment requires an authenticated user")
	}

	now := time.Now()
	row := &types.Enrollment{
		ID:         uuid.New(),
		CourseID:   courseID,
		UserID:     userID,
		EnrolledAt: now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.courseRepo.GetByID(ctx, tx, courseID); err != nil {
			return notFoundOr(err, "course %s not found", courseID)
		}
		if err := s.enrollmentRepo.Create(ctx, tx, row); err != nil {
			if isDuplicate(err) {
				return apierr.Conflict("user %s is already enrolled in course %s", userID, courseID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *enrollmentService) ListMine(ctx context.Context) ([]*types.Enrollment, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("listing enrollments requires an authenticated user")
	}
	return s.enrollmentRepo.ListByUserID(ctx, nil, userID)
}
