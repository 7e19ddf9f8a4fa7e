package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/types"
)

type ModuleFilter struct {
	CourseID uuid.UUID
	Query    string
	Sort     string
	Limit    int
	Offset   int
}

type ModuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, module *types.Module) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Module, error)
	List(ctx context.Context, tx *gorm.DB, filter ModuleFilter) ([]*types.Module, error)
	Update(ctx context.Context, tx *gorm.DB, module *types.Module) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	SlugExists(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, slug string) (bool, error)
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

var moduleSortColumns = map[string]string{
	"order":      "position",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (r *moduleRepo) Create(ctx context.Context, tx *gorm.DB, module *types.Module) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Omit("Course", "Lessons").Create(module).Error
}

func (r *moduleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var module types.Module
	if err := transaction.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC, id ASC")
		}).
		First(&module, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepo) List(ctx context.Context, tx *gorm.DB, filter ModuleFilter) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.Module{})
	if filter.CourseID != uuid.Nil {
		q = q.Where("course_id = ?", filter.CourseID)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}
	q = q.Order(orderClause(filter.Sort, moduleSortColumns, "position ASC, created_at ASC, id ASC"))
	q = applyPage(q, filter.Limit, filter.Offset)

	var modules []*types.Module
	if err := q.Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *moduleRepo) Update(ctx context.Context, tx *gorm.DB, module *types.Module) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Omit("Course", "Lessons").Save(module).Error
}

func (r *moduleRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Delete(&types.Module{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SlugExists probes availability within one course, matching the composite
// unique index on (course_id, slug).
func (r *moduleRepo) SlugExists(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, slug string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).Model(&types.Module{}).
		Where("course_id = ? AND slug = ?", courseID, slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
