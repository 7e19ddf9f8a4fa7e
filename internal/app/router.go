package app

import (
	"github.com/gin-gonic/gin"

	"github.com/opencourse/opencourse-backend/internal/server"
)

func wireRouter(h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:    h.Auth,
		AuthMiddleware: m.Auth,
		CourseHandler:  h.Course,
		ModuleHandler:  h.Module,
		LessonHandler:  h.Lesson,
		TagHandler:     h.Tag,
		TopicHandler:   h.Topic,
		MeHandler:      h.Me,
	})
}
