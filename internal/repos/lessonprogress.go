package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/types"
)

type LessonProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.LessonProgress) error
	GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID, lessonID uuid.UUID) (*types.LessonProgress, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.LessonProgress) error
	CountCompletedByCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (int64, error)
}

type lessonProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	return &lessonProgressRepo{db: db, log: baseLog.With("repo", "LessonProgressRepo")}
}

// Create inserts a fresh row. Concurrent inserts for the same (user, lesson)
// collapse onto the unique index; callers retry as an update on
// gorm.ErrDuplicatedKey.
func (r *lessonProgressRepo) Create(ctx context.Context, tx *gorm.DB, row *types.LessonProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Omit("User", "Lesson").Create(row).Error
}

func (r *lessonProgressRepo) GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID, lessonID uuid.UUID) (*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.LessonProgress
	if err := transaction.WithContext(ctx).
		First(&row, "user_id = ? AND lesson_id = ?", userID, lessonID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Update persists completed/completed_at together so the pair can never drift.
func (r *lessonProgressRepo) Update(ctx context.Context, tx *gorm.DB, row *types.LessonProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(row).
		Select("completed", "completed_at", "updated_at").
		Updates(map[string]interface{}{
			"completed":    row.Completed,
			"completed_at": row.CompletedAt,
			"updated_at":   row.UpdatedAt,
		}).Error
}

// CountCompletedByCourse is the completion numerator: completed rows for the
// user whose lesson belongs to any module of the course.
func (r *lessonProgressRepo) CountCompletedByCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).Model(&types.LessonProgress{}).
		Joins("JOIN lesson ON lesson.id = lesson_progress.lesson_id").
		Joins("JOIN course_module ON course_module.id = lesson.module_id").
		Where("lesson_progress.user_id = ? AND lesson_progress.completed = ? AND course_module.course_id = ?",
			userID, true, courseID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
