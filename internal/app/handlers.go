package app

import (
	"github.com/opencourse/opencourse-backend/internal/handlers"
	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	Course *handlers.CourseHandler
	Module *handlers.ModuleHandler
	Lesson *handlers.LessonHandler
	Tag    *handlers.TagHandler
	Topic  *handlers.TopicHandler
	Me     *handlers.MeHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:   handlers.NewAuthHandler(s.Auth),
		Course: handlers.NewCourseHandler(log, s.Course, s.Progress),
		Module: handlers.NewModuleHandler(s.Module),
		Lesson: handlers.NewLessonHandler(s.Lesson, s.Progress),
		Tag:    handlers.NewTagHandler(s.Tag),
		Topic:  handlers.NewTopicHandler(s.Topic),
		Me:     handlers.NewMeHandler(s.User, s.Enrollment, s.Progress),
	}
}
