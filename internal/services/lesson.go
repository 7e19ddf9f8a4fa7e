package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/slugutil"
	"github.com/opencourse/opencourse-backend/internal/types"
)

type CreateLessonInput struct {
	ModuleID        uuid.UUID
	ForceModuleID   uuid.UUID
	Name            string
	Slug            string
	Content         string
	DurationSeconds int
	Position        int
}

type UpdateLessonInput struct {
	Name            *string
	Slug            *string
	Content         *string
	DurationSeconds *int
	Position        *int
}

type LessonService interface {
	Create(ctx context.Context, input CreateLessonInput) (*types.Lesson, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Lesson, error)
	List(ctx context.Context, filter repos.LessonFilter) ([]*types.Lesson, error)
	ListForModule(ctx context.Context, moduleID uuid.UUID, filter repos.LessonFilter) ([]*types.Lesson, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateLessonInput) (*types.Lesson, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type lessonService struct {
	db         *gorm.DB
	log        *logger.Logger
	moduleRepo repos.ModuleRepo
	lessonRepo repos.LessonRepo
}

func NewLessonService(
	db *gorm.DB,
	baseLog *logger.Logger,
	moduleRepo repos.ModuleRepo,
	lessonRepo repos.LessonRepo,
) LessonService {
	return &lessonService{
		db:         db,
		log:        baseLog.With("service", "LessonService"),
		moduleRepo: moduleRepo,
		lessonRepo: lessonRepo,
	}
}

func validDuration(seconds int) error {
	if seconds < 0 {
		return apierr.Validation("lesson duration must not be negative")
	}
	if seconds > types.MaxLessonDurationSeconds {
		return apierr.Validation("lesson duration cannot exceed 4 hours")
	}
	return nil
}

func (s *lessonService) Create(ctx context.Context, input CreateLessonInput) (*types.Lesson, error) {
	moduleID := input.ModuleID
	if input.ForceModuleID != uuid.Nil {
		// The parent embedded in a nested route is authoritative.
		moduleID = input.ForceModuleID
	}
	if moduleID == uuid.Nil {
		return nil, apierr.Validation("module id is required")
	}
	if input.Name == "" {
		return nil, apierr.Validation("lesson name is required")
	}
	if input.Position < 0 {
		return nil, apierr.Validation("order must not be negative")
	}
	if err := validDuration(input.DurationSeconds); err != nil {
		return nil, err
	}

	lesson := &types.Lesson{
		ID:              uuid.New(),
		ModuleID:        moduleID,
		Name:            input.Name,
		Slug:            input.Slug,
		Content:         input.Content,
		DurationSeconds: input.DurationSeconds,
		Position:        input.Position,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.moduleRepo.GetByID(ctx, tx, moduleID); err != nil {
			return notFoundOr(err, "module %s not found", moduleID)
		}
		return s.insertWithSlug(ctx, tx, lesson)
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *lessonService) insertWithSlug(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error {
	for attempt := 0; ; attempt++ {
		if lesson.Slug == "" {
			slug, err := slugutil.Unique(ctx, lesson.Name, func(ctx context.Context, candidate string) (bool, error) {
				return s.lessonRepo.SlugExists(ctx, tx, lesson.ModuleID, candidate)
			})
			if err != nil {
				return err
			}
			lesson.Slug = slug
		}
		err := s.lessonRepo.Create(ctx, tx, lesson)
		if err == nil {
			return nil
		}
		if isDuplicate(err) && attempt == 0 {
			s.log.Warn("lesson insert lost slug race, retrying", "slug", lesson.Slug, "module_id", lesson.ModuleID)
			lesson.Slug = ""
			continue
		}
		if isDuplicate(err) {
			return apierr.Conflict("lesson slug %q already exists in module %s", lesson.Slug, lesson.ModuleID)
		}
		return err
	}
}

func (s *lessonService) Get(ctx context.Context, id uuid.UUID) (*types.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(err, "lesson %s not found", id)
	}
	return lesson, nil
}

func (s *lessonService) List(ctx context.Context, filter repos.LessonFilter) ([]*types.Lesson, error) {
	return s.lessonRepo.List(ctx, nil, filter)
}

func (s *lessonService) ListForModule(ctx context.Context, moduleID uuid.UUID, filter repos.LessonFilter) ([]*types.Lesson, error) {
	if _, err := s.moduleRepo.GetByID(ctx, nil, moduleID); err != nil {
		return nil, notFoundOr(err, "module %s not found", moduleID)
	}
	filter.ModuleID = moduleID
	return s.lessonRepo.List(ctx, nil, filter)
}

func (s *lessonService) Update(ctx context.Context, id uuid.UUID, input UpdateLessonInput) (*types.Lesson, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, apierr.Validation("lesson name must not be empty")
	}
	if input.Position != nil && *input.Position < 0 {
		return nil, apierr.Validation("order must not be negative")
	}
	if input.DurationSeconds != nil {
		if err := validDuration(*input.DurationSeconds); err != nil {
			return nil, err
		}
	}

	var lesson *types.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.lessonRepo.GetByID(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, "lesson %s not found", id)
		}
		if input.Name != nil {
			found.Name = *input.Name
		}
		if input.Slug != nil {
			found.Slug = *input.Slug
		}
		if input.Content != nil {
			found.Content = *input.Content
		}
		if input.DurationSeconds != nil {
			found.DurationSeconds = *input.DurationSeconds
		}
		if input.Position != nil {
			found.Position = *input.Position
		}
		if found.Slug == "" {
			slug, err := slugutil.Unique(ctx, found.Name, func(ctx context.Context, candidate string) (bool, error) {
				return s.lessonRepo.SlugExists(ctx, tx, found.ModuleID, candidate)
			})
			if err != nil {
				return err
			}
			found.Slug = slug
		}
		if err := s.lessonRepo.Update(ctx, tx, found); err != nil {
			if isDuplicate(err) {
				return apierr.Conflict("lesson slug %q already exists in module %s", found.Slug, found.ModuleID)
			}
			return err
		}
		lesson = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *lessonService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.lessonRepo.DeleteByID(ctx, nil, id); err != nil {
		return notFoundOr(err, "lesson %s not found", id)
	}
	return nil
}
