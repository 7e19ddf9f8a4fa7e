package app

import (
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/repos"
)

type Repos struct {
	User           repos.UserRepo
	UserProfile    repos.UserProfileRepo
	UserToken      repos.UserTokenRepo
	Course         repos.CourseRepo
	Module         repos.ModuleRepo
	Lesson         repos.LessonRepo
	Tag            repos.TagRepo
	Topic          repos.TopicRepo
	Enrollment     repos.EnrollmentRepo
	LessonProgress repos.LessonProgressRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:           repos.NewUserRepo(db, log),
		UserProfile:    repos.NewUserProfileRepo(db, log),
		UserToken:      repos.NewUserTokenRepo(db, log),
		Course:         repos.NewCourseRepo(db, log),
		Module:         repos.NewModuleRepo(db, log),
		Lesson:         repos.NewLessonRepo(db, log),
		Tag:            repos.NewTagRepo(db, log),
		Topic:          repos.NewTopicRepo(db, log),
		Enrollment:     repos.NewEnrollmentRepo(db, log),
		LessonProgress: repos.NewLessonProgressRepo(db, log),
	}
}
