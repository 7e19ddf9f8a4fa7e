package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/types"
)

type LessonFilter struct {
	ModuleID uuid.UUID
	CourseID uuid.UUID
	Query    string
	Sort     string
	Limit    int
	Offset   int
}

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Lesson, error)
	List(ctx context.Context, tx *gorm.DB, filter LessonFilter) ([]*types.Lesson, error)
	Update(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	SlugExists(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, slug string) (bool, error)
	CountByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

var lessonSortColumns = map[string]string{
	"order":      "position",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Omit("Module").Create(lesson).Error
}

func (r *lessonRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var lesson types.Lesson
	if err := transaction.WithContext(ctx).
		First(&lesson, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepo) List(ctx context.Context, tx *gorm.DB, filter LessonFilter) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.Lesson{})
	if filter.ModuleID != uuid.Nil {
		q = q.Where("lesson.module_id = ?", filter.ModuleID)
	}
	if filter.CourseID != uuid.Nil {
		q = q.Where("lesson.module_id IN (?)",
			transaction.Model(&types.Module{}).
				Select("id").
				Where("course_id = ?", filter.CourseID))
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(lesson.name) LIKE ? OR LOWER(lesson.slug) LIKE ? OR LOWER(lesson.content) LIKE ?", like, like, like)
	}
	q = q.Order(orderClause(filter.Sort, lessonSortColumns, "position ASC, created_at ASC, id ASC"))
	q = applyPage(q, filter.Limit, filter.Offset)

	var lessons []*types.Lesson
	if err := q.Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepo) Update(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Omit("Module").Save(lesson).Error
}

func (r *lessonRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Delete(&types.Lesson{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SlugExists probes availability within one module, matching the composite
// unique index on (module_id, slug).
func (r *lessonRepo) SlugExists(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, slug string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).Model(&types.Lesson{}).
		Where("module_id = ? AND slug = ?", moduleID, slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCourseID counts lessons across every module of the course. Feeds the
// derived total_lessons field and the completion denominator.
func (r *lessonRepo) CountByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).Model(&types.Lesson{}).
		Joins("JOIN course_module ON course_module.id = lesson.module_id").
		Where("course_module.course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
