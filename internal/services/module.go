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

type CreateModuleInput struct {
	// CourseID from the request body; a nested route's parent id overrides it
	// (ForceCourseID).
	CourseID      uuid.UUID
	ForceCourseID uuid.UUID
	Name          string
	Slug          string
	Description   string
	Position      int
}

type UpdateModuleInput struct {
	Name        *string
	Slug        *string
	Description *string
	Position    *int
}

type ModuleService interface {
	Create(ctx context.Context, input CreateModuleInput) (*types.Module, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Module, error)
	List(ctx context.Context, filter repos.ModuleFilter) ([]*types.Module, error)
	ListForCourse(ctx context.Context, courseID uuid.UUID, filter repos.ModuleFilter) ([]*types.Module, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateModuleInput) (*types.Module, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type moduleService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	moduleRepo repos.ModuleRepo
}

func NewModuleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	moduleRepo repos.ModuleRepo,
) ModuleService {
	return &moduleService{
		db:         db,
		log:        baseLog.With("service", "ModuleService"),
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
	}
}

func (s *moduleService) Create(ctx context.Context, input CreateModuleInput) (*types.Module, error) {
	courseID := input.CourseID
	if input.ForceCourseID != uuid.Nil {
		// The parent embedded in a nested route is authoritative.
		courseID = input.ForceCourseID
	}
	if courseID == uuid.Nil {
		return nil, apierr.Validation("course id is required")
	}
	if input.Name == "" {
		return nil, apierr.Validation("module name is required")
	}
	if input.Position < 0 {
		return nil, apierr.Validation("order must not be negative")
	}

	module := &types.Module{
		ID:          uuid.New(),
		CourseID:    courseID,
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		Position:    input.Position,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.courseRepo.GetByID(ctx, tx, courseID); err != nil {
			return notFoundOr(err, "course %s not found", courseID)
		}
		return s.insertWithSlug(ctx, tx, module)
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

// insertWithSlug mirrors the course path, but the availability probe and the
// unique index are both scoped to (course_id, slug).
func (s *moduleService) insertWithSlug(ctx context.Context, tx *gorm.DB, module *types.Module) error {
	for attempt := 0; ; attempt++ {
		if module.Slug == "" {
			slug, err := slugutil.Unique(ctx, module.Name, func(ctx context.Context, candidate string) (bool, error) {
				return s.moduleRepo.SlugExists(ctx, tx, module.CourseID, candidate)
			})
			if err != nil {
				return err
			}
			module.Slug = slug
		}
		err := s.moduleRepo.Create(ctx, tx, module)
		if err == nil {
			return nil
		}
		if isDuplicate(err) && attempt == 0 {
			s.log.Warn("module insert lost slug race, retrying", "slug", module.Slug, "course_id", module.CourseID)
			module.Slug = ""
			continue
		}
		if isDuplicate(err) {
			return apierr.Conflict("module slug %q already exists in course %s", module.Slug, module.CourseID)
		}
		return err
	}
}

func (s *moduleService) Get(ctx context.Context, id uuid.UUID) (*types.Module, error) {
	module, err := s.moduleRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(err, "module %s not found", id)
	}
	return module, nil
}

func (s *moduleService) List(ctx context.Context, filter repos.ModuleFilter) ([]*types.Module, error) {
	return s.moduleRepo.List(ctx, nil, filter)
}

// ListForCourse is the nested-route listing: the route parent wins over any
// filter value, and a missing parent is NotFound rather than an empty list.
func (s *moduleService) ListForCourse(ctx context.Context, courseID uuid.UUID, filter repos.ModuleFilter) ([]*types.Module, error) {
	if _, err := s.courseRepo.GetByID(ctx, nil, courseID); err != nil {
		return nil, notFoundOr(err, "course %s not found", courseID)
	}
	filter.CourseID = courseID
	return s.moduleRepo.List(ctx, nil, filter)
}

func (s *moduleService) Update(ctx context.Context, id uuid.UUID, input UpdateModuleInput) (*types.Module, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, apierr.Validation("module name must not be empty")
	}
	if input.Position != nil && *input.Position < 0 {
		return nil, apierr.Validation("order must not be negative")
	}

	var module *types.Module
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.moduleRepo.GetByID(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, "module %s not found", id)
		}
		if input.Name != nil {
			found.Name = *input.Name
		}
		if input.Slug != nil {
			found.Slug = *input.Slug
		}
		if input.Description != nil {
			found.Description = *input.Description
		}
		if input.Position != nil {
			found.Position = *input.Position
		}
		if found.Slug == "" {
			slug, err := slugutil.Unique(ctx, found.Name, func(ctx context.Context, candidate string) (bool, error) {
				return s.moduleRepo.SlugExists(ctx, tx, found.CourseID, candidate)
			})
			if err != nil {
				return err
			}
			found.Slug = slug
		}
		if err := s.moduleRepo.Update(ctx, tx, found); err != nil {
			if isDuplicate(err) {
				return apierr.Conflict("module slug %q already exists in course %s", found.Slug, found.CourseID)
			}
			return err
		}
		module = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

// Delete removes the module and, through the cascade, its lessons and their
// progress rows.
func (s *moduleService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.moduleRepo.DeleteByID(ctx, nil, id); err != nil {
		return notFoundOr(err, "module %s not found", id)
	}
	return nil
}
