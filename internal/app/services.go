package app

import (
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Course     services.CourseService
	Module     services.ModuleService
	Lesson     services.LessonService
	Tag        services.TagService
	Topic      services.TopicService
	Enrollment services.EnrollmentService
	Progress   services.ProgressService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")
	return Services{
		Auth: services.NewAuthService(
			db, log, r.User, r.UserProfile, r.UserToken,
			cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
		),
		User:       services.NewUserService(db, log, r.User, r.UserProfile),
		Course:     services.NewCourseService(db, log, r.Course, r.Lesson, r.Tag, r.Topic, r.User),
		Module:     services.NewModuleService(db, log, r.Course, r.Module),
		Lesson:     services.NewLessonService(db, log, r.Module, r.Lesson),
		Tag:        services.NewTagService(db, log, r.Tag),
		Topic:      services.NewTopicService(db, log, r.Topic),
		Enrollment: services.NewEnrollmentService(db, log, r.Course, r.Enrollment),
		Progress:   services.NewProgressService(db, log, r.Lesson, r.LessonProgress),
	}
}
