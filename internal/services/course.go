package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/slugutil"
	"github.com/opencourse/opencourse-backend/internal/types"
)

type CreateCourseInput struct {
	Name          string
	Slug          string
	Description   string
	Published     bool
	Position      int
	Metadata      datatypes.JSON
	TagIDs        []uuid.UUID
	TopicIDs      []uuid.UUID
	InstructorIDs []uuid.UUID
}

// UpdateCourseInput carries partial updates; nil fields are left untouched.
// Setting Slug to a non-nil empty string clears it so the next explicit
// update may re-derive; slugs are otherwise immutable.
type UpdateCourseInput struct {
	Name          *string
	Slug          *string
	Description   *string
	Published     *bool
	Position      *int
	Metadata      datatypes.JSON
	TagIDs        []uuid.UUID
	TopicIDs      []uuid.UUID
	InstructorIDs []uuid.UUID
}

type CourseService interface {
	Create(ctx context.Context, input CreateCourseInput) (*types.Course, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Course, error)
	GetTree(ctx context.Context, id uuid.UUID) (*types.Course, error)
	List(ctx context.Context, filter repos.CourseFilter) ([]*types.Course, error)
	ListTree(ctx context.Context, filter repos.CourseFilter) ([]*types.Course, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCourseInput) (*types.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Publish(ctx context.Context, id uuid.UUID) (*types.Course, error)
	TotalLessons(ctx context.Context, courseID uuid.UUID) (int64, error)
}

type courseService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	lessonRepo repos.LessonRepo
	tagRepo    repos.TagRepo
	topicRepo  repos.TopicRepo
	userRepo   repos.UserRepo
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	lessonRepo repos.LessonRepo,
	tagRepo repos.TagRepo,
	topicRepo repos.TopicRepo,
	userRepo repos.UserRepo,
) CourseService {
	return &courseService{
		db:         db,
		log:        baseLog.With("service", "CourseService"),
		courseRepo: courseRepo,
		lessonRepo: lessonRepo,
		tagRepo:    tagRepo,
		topicRepo:  topicRepo,
		userRepo:   userRepo,
	}
}

func (s *courseService) Create(ctx context.Context, input CreateCourseInput) (*types.Course, error) {
	if input.Name == "" {
		return nil, apierr.Validation("course name is required")
	}
	if input.Position < 0 {
		return nil, apierr.Validation("order must not be negative")
	}

	course := &types.Course{
		ID:          uuid.New(),
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		Published:   input.Published,
		Position:    input.Position,
		Metadata:    input.Metadata,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.insertWithSlug(ctx, tx, course); err != nil {
			return err
		}
		return s.attachAssociations(ctx, tx, course, input.TagIDs, input.TopicIDs, input.InstructorIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.courseRepo.GetWithTree(ctx, nil, course.ID)
}

// insertWithSlug derives the slug on first save only, then inserts. A losing
// race against the global unique index gets one re-derive before the conflict
// is surfaced.
func (s *courseService) insertWithSlug(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	for attempt := 0; ; attempt++ {
		if course.Slug == "" {
			slug, err := slugutil.Unique(ctx, course.Name, func(ctx context.Context, candidate string) (bool, error) {
				return s.courseRepo.SlugExists(ctx, tx, candidate)
			})
			if err != nil {
				return err
			}
			course.Slug = slug
		}
		err := s.courseRepo.Create(ctx, tx, course)
		if err == nil {
			return nil
		}
		if isDuplicate(err) && attempt == 0 {
			s.log.Warn("course insert lost slug race, retrying", "slug", course.Slug)
			course.Slug = ""
			continue
		}
		if isDuplicate(err) {
			return apierr.Conflict("course slug %q already exists", course.Slug)
		}
		return err
	}
}

func (s *courseService) attachAssociations(ctx context.Context, tx *gorm.DB, course *types.Course, tagIDs, topicIDs, instructorIDs []uuid.UUID) error {
	if tagIDs != nil {
		tags, err := s.tagRepo.GetByIDs(ctx, tx, tagIDs)
		if err != nil {
			return err
		}
		if len(tags) != len(tagIDs) {
			return apierr.NotFound("one or more tags do not exist")
		}
		if err := s.courseRepo.ReplaceTags(ctx, tx, course, tags); err != nil {
			return err
		}
	}
	if topicIDs != nil {
		topics, err := s.topicRepo.GetByIDs(ctx, tx, topicIDs)
		if err != nil {
			return err
		}
		if len(topics) != len(topicIDs) {
			return apierr.NotFound("one or more topics do not exist")
		}
		if err := s.courseRepo.ReplaceTopics(ctx, tx, course, topics); err != nil {
			return err
		}
	}
	if instructorIDs != nil {
		instructors, err := s.userRepo.GetByIDs(ctx, tx, instructorIDs)
		if err != nil {
			return err
		}
		if len(instructors) != len(instructorIDs) {
			return apierr.NotFound("one or more instructors do not exist")
		}
		if err := s.courseRepo.ReplaceInstructors(ctx, tx, course, instructors); err != nil {
			return err
		}
	}
	return nil
}

func (s *courseService) Get(ctx context.Context, id uuid.UUID) (*types.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(err, "course %s not found", id)
	}
	return course, nil
}

func (s *courseService) GetTree(ctx context.Context, id uuid.UUID) (*types.Course, error) {
	course, err := s.courseRepo.GetWithTree(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(err, "course %s not found", id)
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context, filter repos.CourseFilter) ([]*types.Course, error) {
	return s.courseRepo.List(ctx, nil, filter)
}

func (s *courseService) ListTree(ctx context.Context, filter repos.CourseFilter) ([]*types.Course, error) {
	return s.courseRepo.ListWithTree(ctx, nil, filter)
}

func (s *courseService) Update(ctx context.Context, id uuid.UUID, input UpdateCourseInput) (*types.Course, error) {
	if input.Position != nil && *input.Position < 0 {
		return nil, apierr.Validation("order must not be negative")
	}
	if input.Name != nil && *input.Name == "" {
		return nil, apierr.Validation("course name must not be empty")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.courseRepo.GetByID(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, "course %s not found", id)
		}
		if input.Name != nil {
			course.Name = *input.Name
		}
		if input.Slug != nil {
			// Explicitly cleared slugs are re-derived; any other value is
			// taken verbatim and still subject to the unique index.
			course.Slug = *input.Slug
		}
		if input.Description != nil {
			course.Description = *input.Description
		}
		if input.Published != nil {
			course.Published = *input.Published
		}
		if input.Position != nil {
			course.Position = *input.Position
		}
		if input.Metadata != nil {
			course.Metadata = input.Metadata
		}
		if course.Slug == "" {
			slug, err := slugutil.Unique(ctx, course.Name, func(ctx context.Context, candidate string) (bool, error) {
				return s.courseRepo.SlugExists(ctx, tx, candidate)
			})
			if err != nil {
				return err
			}
			course.Slug = slug
		}
		if err := s.courseRepo.Update(ctx, tx, course); err != nil {
			if isDuplicate(err) {
				return apierr.Conflict("course slug %q already exists", course.Slug)
			}
			return err
		}
		return s.attachAssociations(ctx, tx, course, input.TagIDs, input.TopicIDs, input.InstructorIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.courseRepo.GetWithTree(ctx, nil, id)
}

// Delete removes the course; modules, lessons, enrollments and progress go
// with it through the ON DELETE CASCADE chain.
func (s *courseService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.courseRepo.DeleteByID(ctx, nil, id); err != nil {
		return notFoundOr(err, "course %s not found", id)
	}
	return nil
}

func (s *courseService) Publish(ctx context.Context, id uuid.UUID) (*types.Course, error) {
	var course *types.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.courseRepo.GetByID(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, "course %s not found", id)
		}
		found.Published = true
		found.UpdatedAt = time.Now()
		if err := s.courseRepo.Update(ctx, tx, found); err != nil {
			return err
		}
		course = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) TotalLessons(ctx context.Context, courseID uuid.UUID) (int64, error) {
	return s.lessonRepo.CountByCourseID(ctx, nil, courseID)
}
