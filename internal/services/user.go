package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/requestdata"
	"github.com/opencourse/opencourse-backend/internal/types"
)

type UpdateMeInput struct {
	FirstName   *string
	LastName    *string
	DisplayName *string
	Bio         *string
}

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateMe(ctx context.Context, input UpdateMeInput) (*types.User, error)
}

type userService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	profileRepo repos.UserProfileRepo
}

func NewUserService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	profileRepo repos.UserProfileRepo,
) UserService {
	return &userService{
		db:          db,
		log:         baseLog.With("service", "UserService"),
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

func (s *userService) GetMe(ctx context.Context) (*types.User, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, notFoundOr(err, "user %s not found", userID)
	}
	return user, nil
}

// UpdateMe saves the user and then the owned profile in one transaction: the
// on-user-saved hook from the registration flow, kept explicit.
func (s *userService) UpdateMe(ctx context.Context, input UpdateMeInput) (*types.User, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}

	var user *types.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.userRepo.GetByID(ctx, tx, userID)
		if err != nil {
			return notFoundOr(err, "user %s not found", userID)
		}
		if input.FirstName != nil {
			found.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			found.LastName = *input.LastName
		}
		if err := s.userRepo.Update(ctx, tx, found); err != nil {
			return err
		}

		profile, err := s.profileRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return notFoundOr(err, "profile for user %s not found", userID)
		}
		if input.DisplayName != nil {
			profile.DisplayName = *input.DisplayName
		}
		if input.Bio != nil {
			profile.Bio = *input.Bio
		}
		if err := s.profileRepo.Save(ctx, tx, profile); err != nil {
			return err
		}
		found.Profile = profile
		user = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
