package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/opencourse/opencourse-backend/internal/handlers"
	"github.com/opencourse/opencourse-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	CourseHandler  *handlers.CourseHandler
	ModuleHandler  *handlers.ModuleHandler
	LessonHandler  *handlers.LessonHandler
	TagHandler     *handlers.TagHandler
	TopicHandler   *handlers.TopicHandler
	MeHandler      *handlers.MeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.OptionalAuth())
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/refresh", cfg.AuthHandler.Refresh)

		// Courses. The featured route registers before :id so gin does not
		// treat "featured" as a course id.
		api.GET("/courses/featured", cfg.CourseHandler.Featured)
		api.GET("/courses", cfg.CourseHandler.List)
		api.POST("/courses", cfg.CourseHandler.Create)
		api.GET("/courses/:id", cfg.CourseHandler.Get)
		api.PUT("/courses/:id", cfg.CourseHandler.Update)
		api.PATCH("/courses/:id", cfg.CourseHandler.Update)
		api.DELETE("/courses/:id", cfg.CourseHandler.Delete)
		api.POST("/courses/:id/publish", cfg.CourseHandler.Publish)
		api.GET("/courses/:id/modules", cfg.ModuleHandler.ListForCourse)
		api.POST("/courses/:id/modules", cfg.ModuleHandler.CreateForCourse)

		// Modules
		api.GET("/modules", cfg.ModuleHandler.List)
		api.POST("/modules", cfg.ModuleHandler.Create)
		api.GET("/modules/:id", cfg.ModuleHandler.Get)
		api.PUT("/modules/:id", cfg.ModuleHandler.Update)
		api.PATCH("/modules/:id", cfg.ModuleHandler.Update)
		api.DELETE("/modules/:id", cfg.ModuleHandler.Delete)
		api.GET("/modules/:id/lessons", cfg.LessonHandler.ListForModule)
		api.POST("/modules/:id/lessons", cfg.LessonHandler.CreateForModule)

		// Lessons
		api.GET("/lessons", cfg.LessonHandler.List)
		api.POST("/lessons", cfg.LessonHandler.Create)
		api.GET("/lessons/:id", cfg.LessonHandler.Get)
		api.PUT("/lessons/:id", cfg.LessonHandler.Update)
		api.PATCH("/lessons/:id", cfg.LessonHandler.Update)
		api.DELETE("/lessons/:id", cfg.LessonHandler.Delete)

		// Tags
		api.GET("/tags", cfg.TagHandler.List)
		api.POST("/tags", cfg.TagHandler.Create)
		api.GET("/tags/:id", cfg.TagHandler.Get)
		api.PUT("/tags/:id", cfg.TagHandler.Update)
		api.PATCH("/tags/:id", cfg.TagHandler.Update)
		api.DELETE("/tags/:id", cfg.TagHandler.Delete)

		// Topics
		api.GET("/topics", cfg.TopicHandler.List)
		api.POST("/topics", cfg.TopicHandler.Create)
		api.GET("/topics/:id", cfg.TopicHandler.Get)
		api.PUT("/topics/:id", cfg.TopicHandler.Update)
		api.PATCH("/topics/:id", cfg.TopicHandler.Update)
		api.DELETE("/topics/:id", cfg.TopicHandler.Delete)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		protected.POST("/logout", cfg.AuthHandler.Logout)

		protected.GET("/me", cfg.MeHandler.GetMe)
		protected.PATCH("/me/profile", cfg.MeHandler.UpdateMe)
		protected.GET("/me/enrollments", cfg.MeHandler.ListMyEnrollments)

		protected.POST("/courses/:id/enroll", cfg.MeHandler.Enroll)
		protected.POST("/lessons/:id/mark-complete", cfg.LessonHandler.MarkComplete)
	}

	return router
}
