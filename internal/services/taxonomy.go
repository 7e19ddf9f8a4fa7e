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

// CreateLookupInput covers tags and topics; both are flat named+slugged+
// ordered entities with a globally unique slug.
type CreateLookupInput struct {
	Name     string
	Slug     string
	Position int
}

type UpdateLookupInput struct {
	Name     *string
	Slug     *string
	Position *int
}

type TagService interface {
	Create(ctx context.Context, input CreateLookupInput) (*types.Tag, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Tag, error)
	List(ctx context.Context, filter repos.LookupFilter) ([]*types.Tag, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateLookupInput) (*types.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TopicService interface {
	Create(ctx context.Context, input CreateLookupInput) (*types.Topic, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Topic, error)
	List(ctx context.Context, filter repos.LookupFilter) ([]*types.Topic, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateLookupInput) (*types.Topic, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tagService struct {
	db      *gorm.DB
	log     *logger.Logger
	tagRepo repos.TagRepo
}

func NewTagService(db *gorm.DB, baseLog *logger.Logger, tagRepo repos.TagRepo) TagService {
	return &tagService{db: db, log: baseLog.With("service", "TagService"), tagRepo: tagRepo}
}

func (s *tagService) Create(ctx context.Context, input CreateLookupInput) (*types.Tag, error) {
	if input.Name == "" {
		return nil, apierr.Validation("tag name is required")
	}
	if input.Position < 0 {
		return nil, apierr.Validation("order must not be negative")
	}
	tag := &types.Tag{ID: uuid.New(), Name: input.Name, Slug: input.Slug, Position: input.Position}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for attempt := 0; ; attempt++ {
			if tag.Slug == "" {
				slug, err := slugutil.Unique(ctx, tag.Name, func(ctx context.Context, candidate string) (bool, error) {
					return s.tagRepo.SlugExists(ctx, tx, candidate)
				})
				if err != nil {
					return err
				}
				tag.Slug = slug
			}
			err := s.tagRepo.Create(ctx, tx, tag)
			if err == nil {
				return nil
			}
			if isDuplicate(err) && attempt == 0 {
				tag.Slug = ""
				continue
			}
			if isDuplicate(err) {
				return apierr.Conflict("tag slug %q already exists", tag.Slug)
			}
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *tagService) Get(ctx context.Context, id uuid.UUID) (*types.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(err, "tag %s not found", id)
	}
	return tag, nil
}

func (s *tagService) List(ctx context.Context, filter repos.LookupFilter) ([]*types.Tag, error) {
	return s.tagRepo.List(ctx, nil, filter)
}

func (s *tagService) Update(ctx context.Context, id uuid.UUID, input UpdateLookupInput) (*types.Tag, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, apierr.Validation("tag name must not be empty")
	}
	if input.Position != nil && *input.Position < 0 {
		return nil, apierr.Validation("order must not be negative")
	}
	var tag *types.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.tagRepo.GetByID(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, "tag %s not found", id)
		}
		if input.Name != nil {
			found.Name = *input.Name
		}
		if input.Slug != nil {
			found.Slug = *input.Slug
		}
		if input.Position != nil {
			found.Position = *input.Position
		}
		if found.Slug == "" {
			slug, err := slugutil.Unique(ctx, found.Name, func(ctx context.Context, candidate string) (bool, error) {
				return s.tagRepo.SlugExists(ctx, tx, candidate)
			})
			if err != nil {
				return err
			}
			found.Slug = slug
		}
		if err := s.tagRepo.Update(ctx, tx, found); err != nil {
			if isDuplicate(err) {
				return apierr.Conflict("tag slug %q already exists", found.Slug)
			}
			return err
		}
		tag = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *tagService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tagRepo.DeleteByID(ctx, nil, id); err != nil {
		return notFoundOr(err, "tag %s not found", id)
	}
	return nil
}

type topicService struct {
	db        *gorm.DB
	log       *logger.Logger
	topicRepo repos.TopicRepo
}

func NewTopicService(db *gorm.DB, baseLog *logger.Logger, topicRepo repos.TopicRepo) TopicService {
	return &topicService{db: db, log: baseLog.With("service", "TopicService"), topicRepo: topicRepo}
}

func (s *topicService) Create(ctx context.Context, input CreateLookupInput) (*types.Topic, error) {
	if input.Name == "" {
		return nil, apierr.Validation("topic name is required")
	}
	if input.Position < 0 {
		return nil, apierr.Validation("order must not be negative")
	}
	topic := &types.Topic{ID: uuid.New(), Name: input.Name, Slug: input.Slug, Position: input.Position}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for attempt := 0; ; attempt++ {
			if topic.Slug == "" {
				slug, err := slugutil.Unique(ctx, topic.Name, func(ctx context.Context, candidate string) (bool, error) {
					return s.topicRepo.SlugExists(ctx, tx, candidate)
				})
				if err != nil {
					return err
				}
				topic.Slug = slug
			}
			err := s.topicRepo.Create(ctx, tx, topic)
			if err == nil {
				return nil
			}
			if isDuplicate(err) && attempt == 0 {
				topic.Slug = ""
				continue
			}
			if isDuplicate(err) {
				return apierr.Conflict("topic slug %q already exists", topic.Slug)
			}
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *topicService) Get(ctx context.Context, id uuid.UUID) (*types.Topic, error) {
	topic, err := s.topicRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(err, "topic %s not found", id)
	}
	return topic, nil
}

func (s *topicService) List(ctx context.Context, filter repos.LookupFilter) ([]*types.Topic, error) {
	return s.topicRepo.List(ctx, nil, filter)
}

func (s *topicService) Update(ctx context.Context, id uuid.UUID, input UpdateLookupInput) (*types.Topic, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, apierr.Validation("topic name must not be empty")
	}
	if input.Position != nil && *input.Position < 0 {
		return nil, apierr.Validation("order must not be negative")
	}
	var topic *types.Topic
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.topicRepo.GetByID(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, "topic %s not found", id)
		}
		if input.Name != nil {
			found.Name = *input.Name
		}
		if input.Slug != nil {
			found.Slug = *input.Slug
		}
		if input.Position != nil {
			found.Position = *input.Position
		}
		if found.Slug == "" {
			slug, err := slugutil.Unique(ctx, found.Name, func(ctx context.Context, candidate string) (bool, error) {
				return s.topicRepo.SlugExists(ctx, tx, candidate)
			})
			if err != nil {
				return err
			}
			found.Slug = slug
		}
		if err := s.topicRepo.Update(ctx, tx, found); err != nil {
			if isDuplicate(err) {
				return apierr.Conflict("topic slug %q already exists", found.Slug)
			}
			return err
		}
		topic = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *topicService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.topicRepo.DeleteByID(ctx, nil, id); err != nil {
		return notFoundOr(err, "topic %s not found", id)
	}
	return nil
}
