package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/requestdata"
	"github.com/opencourse/opencourse-backend/internal/types"
)

type ProgressService interface {
	// MarkComplete upserts the caller's progress row for the lesson and sets
	// completed. The completion timestamp reflects the first completion and
	// is never refreshed by re-marking.
	MarkComplete(ctx context.Context, lessonID uuid.UUID) (*types.LessonProgress, error)
	// SetCompleted writes an explicit completed value; false clears the
	// completion timestamp in the same write.
	SetCompleted(ctx context.Context, lessonID uuid.UUID, completed bool) (*types.LessonProgress, error)
	// CompletionPercentage derives the user's completion of a course,
	// rounded to two decimals. A course with no lessons is 0.0.
	CompletionPercentage(ctx context.Context, userID, courseID uuid.UUID) (float64, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	lessonRepo   repos.LessonRepo
	progressRepo repos.LessonProgressRepo
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lessonRepo repos.LessonRepo,
	progressRepo repos.LessonProgressRepo,
) ProgressService {
	return &progressService{
		db:           db,
		log:          baseLog.With("service", "ProgressService"),
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
	}
}

func (s *progressService) MarkComplete(ctx context.Context, lessonID uuid.UUID) (*types.LessonProgress, error) {
	return s.SetCompleted(ctx, lessonID, true)
}

func (s *progressService) SetCompleted(ctx context.Context, lessonID uuid.UUID, completed bool) (*types.LessonProgress, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		// Progress is always attributed to a real user. Anonymous writes are
		// rejected, never silently recorded.
		return nil, apierr.Unauthorized("marking lesson progress requires an authenticated user")
	}

	var row *types.LessonProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lessonRepo.GetByID(ctx, tx, lessonID); err != nil {
			return notFoundOr(err, "lesson %s not found", lessonID)
		}
		upserted, err := s.upsert(ctx, tx, userID, lessonID, completed)
		if err != nil {
			return err
		}
		row = upserted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// upsert finds or creates the (user, lesson) row and applies the completed
// transition rules. A concurrent insert losing the unique-index race is
// retried once as an update; the retry is invisible to the caller.
func (s *progressService) upsert(ctx context.Context, tx *gorm.DB, userID, lessonID uuid.UUID, completed bool) (*types.LessonProgress, error) {
	now := time.Now()

	existing, err := s.progressRepo.GetByUserAndLesson(ctx, tx, userID, lessonID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing == nil {
		row := &types.LessonProgress{
			ID:        uuid.New(),
			UserID:    userID,
			LessonID:  lessonID,
			Completed: completed,
		}
		if completed {
			row.CompletedAt = &now
		}
		createErr := s.progressRepo.Create(ctx, tx, row)
		if createErr == nil {
			return row, nil
		}
		if !isDuplicate(createErr) {
			return nil, createErr
		}
		// Lost the race: another writer inserted the row first. Re-read and
		// fall through to the update path.
		existing, err = s.progressRepo.GetByUserAndLesson(ctx, tx, userID, lessonID)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case completed && existing.Completed:
		// Idempotent re-mark: the first completion timestamp stands.
		return existing, nil
	case completed:
		existing.Completed = true
		existing.CompletedAt = &now
	default:
		existing.Completed = false
		existing.CompletedAt = nil
	}
	existing.UpdatedAt = now
	if err := s.progressRepo.Update(ctx, tx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *progressService) CompletionPercentage(ctx context.Context, userID, courseID uuid.UUID) (float64, error) {
	total, err := s.lessonRepo.CountByCourseID(ctx, nil, courseID)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0.0, nil
	}
	completed, err := s.progressRepo.CountCompletedByCourse(ctx, nil, userID, courseID)
	if err != nil {
		return 0, err
	}
	pct := float64(completed) / float64(total) * 100
	return math.Round(pct*100) / 100, nil
}
