package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/types"
)

// CourseFilter narrows and orders top-level course listings.
type CourseFilter struct {
	Published *bool
	TagSlug   string
	TopicSlug string
	Query     string
	Sort      string
	Limit     int
	Offset    int
}

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, course *types.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Course, error)
	GetWithTree(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Course, error)
	List(ctx context.Context, tx *gorm.DB, filter CourseFilter) ([]*types.Course, error)
	ListWithTree(ctx context.Context, tx *gorm.DB, filter CourseFilter) ([]*types.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *types.Course) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error)
	ReplaceTags(ctx context.Context, tx *gorm.DB, course *types.Course, tags []*types.Tag) error
	ReplaceTopics(ctx context.Context, tx *gorm.DB, course *types.Course, topics []*types.Topic) error
	ReplaceInstructors(ctx context.Context, tx *gorm.DB, course *types.Course, instructors []*types.User) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

var courseSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	// Omit associations: tags/topics/instructors are attached explicitly so a
	// create can never invent new lookup rows as a side effect.
	return transaction.WithContext(ctx).
		Omit("Tags", "Topics", "Instructors", "Modules").
		Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var course types.Course
	if err := transaction.WithContext(ctx).
		First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// GetWithTree loads the course with its full nesting for the shaped views.
// Embedded lessons are trimmed to the columns the views expose.
func (r *courseRepo) GetWithTree(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var course types.Course
	if err := treeScope(transaction.WithContext(ctx)).
		First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func treeScope(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC, id ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "module_id", "name", "slug", "position").
				Order("position ASC, created_at ASC, id ASC")
		}).
		Preload("Tags").
		Preload("Topics").
		Preload("Instructors")
}

func (r *courseRepo) List(ctx context.Context, tx *gorm.DB, filter CourseFilter) ([]*types.Course, error) {
	return r.list(ctx, tx, filter, false)
}

func (r *courseRepo) ListWithTree(ctx context.Context, tx *gorm.DB, filter CourseFilter) ([]*types.Course, error) {
	return r.list(ctx, tx, filter, true)
}

func (r *courseRepo) list(ctx context.Context, tx *gorm.DB, filter CourseFilter, withTree bool) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Course{})
	if filter.Published != nil {
		q = q.Where("course.published = ?", *filter.Published)
	}
	if filter.TagSlug != "" {
		q = q.Where("course.id IN (?)",
			transaction.Table("course_tags").
				Select("course_tags.course_id").
				Joins("JOIN tag ON tag.id = course_tags.tag_id").
				Where("tag.slug = ?", filter.TagSlug))
	}
	if filter.TopicSlug != "" {
		q = q.Where("course.id IN (?)",
			transaction.Table("course_topics").
				Select("course_topics.course_id").
				Joins("JOIN topic ON topic.id = course_topics.topic_id").
				Where("topic.slug = ?", filter.TopicSlug))
	}
	if filter.Query != "" {
		// LOWER on both sides keeps the match case-insensitive on every
		// driver; plain LIKE is case-sensitive on postgres.
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(course.name) LIKE ? OR LOWER(course.slug) LIKE ? OR LOWER(course.description) LIKE ?", like, like, like)
	}

	q = q.Order(orderClause(filter.Sort, courseSortColumns, "created_at DESC, id ASC"))
	q = applyPage(q, filter.Limit, filter.Offset)
	if withTree {
		q = treeScope(q)
	}

	var courses []*types.Course
	if err := q.Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) Update(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Omit("Tags", "Topics", "Instructors", "Modules").
		Save(course).Error
}

func (r *courseRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Delete(&types.Course{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).Model(&types.Course{}).
		Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *courseRepo) ReplaceTags(ctx context.Context, tx *gorm.DB, course *types.Course, tags []*types.Tag) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(course).Association("Tags").Replace(tags)
}

func (r *courseRepo) ReplaceTopics(ctx context.Context, tx *gorm.DB, course *types.Course, topics []*types.Topic) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(course).Association("Topics").Replace(topics)
}

func (r *courseRepo) ReplaceInstructors(ctx context.Context, tx *gorm.DB, course *types.Course, instructors []*types.User) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(course).Association("Instructors").Replace(instructors)
}

// orderClause resolves a caller sort key ("name", "-created_at") against the
// entity's allow-list, falling back to the entity default. The id tiebreak
// keeps pagination stable when sort values collide.
func orderClause(sort string, allowed map[string]string, def string) string {
	if sort == "" {
		return def
	}
	dir := "ASC"
	key := sort
	if key[0] == '-' {
		dir = "DESC"
		key = key[1:]
	}
	col, ok := allowed[key]
	if !ok {
		return def
	}
	return fmt.Sprintf("%s %s, id ASC", col, dir)
}

func applyPage(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return q.Limit(limit).Offset(offset)
}
