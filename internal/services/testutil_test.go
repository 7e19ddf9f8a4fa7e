package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/opencourse/opencourse-backend/internal/db"
	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/requestdata"
	"github.com/opencourse/opencourse-backend/internal/types"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory SQLite database per test. Constraint
// violations translate to gorm.ErrDuplicatedKey the same way the postgres
// driver translates them.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared&_foreign_keys=on", testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrateAll(gdb); err != nil {
		t.Fatalf("automigrate test db: %v", err)
	}
	return gdb
}

type testEnv struct {
	db          *gorm.DB
	courses     CourseService
	modules     ModuleService
	lessons     LessonService
	tags        TagService
	topics      TopicService
	enrollments EnrollmentService
	progress    ProgressService
	auth        AuthService
	users       UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()

	userRepo := repos.NewUserRepo(gdb, log)
	profileRepo := repos.NewUserProfileRepo(gdb, log)
	tokenRepo := repos.NewUserTokenRepo(gdb, log)
	courseRepo := repos.NewCourseRepo(gdb, log)
	moduleRepo := repos.NewModuleRepo(gdb, log)
	lessonRepo := repos.NewLessonRepo(gdb, log)
	tagRepo := repos.NewTagRepo(gdb, log)
	topicRepo := repos.NewTopicRepo(gdb, log)
	enrollmentRepo := repos.NewEnrollmentRepo(gdb, log)
	progressRepo := repos.NewLessonProgressRepo(gdb, log)

	return &testEnv{
		db:          gdb,
		courses:     NewCourseService(gdb, log, courseRepo, lessonRepo, tagRepo, topicRepo, userRepo),
		modules:     NewModuleService(gdb, log, courseRepo, moduleRepo),
		lessons:     NewLessonService(gdb, log, moduleRepo, lessonRepo),
		tags:        NewTagService(gdb, log, tagRepo),
		topics:      NewTopicService(gdb, log, topicRepo),
		enrollments: NewEnrollmentService(gdb, log, courseRepo, enrollmentRepo),
		progress:    NewProgressService(gdb, log, lessonRepo, progressRepo),
		auth:        NewAuthService(gdb, log, userRepo, profileRepo, tokenRepo, "test-secret", time.Hour, 24*time.Hour),
		users:       NewUserService(gdb, log, userRepo, profileRepo),
	}
}

func ctxWithUser(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

func createTestUser(t *testing.T, gdb *gorm.DB) *types.User {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("user-%s@example.com", uuid.New().String()[:8]),
		Password:  "irrelevant",
		FirstName: "Test",
		LastName:  "User",
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func (e *testEnv) createCourse(t *testing.T, name string) *types.Course {
	t.Helper()
	course, err := e.courses.Create(context.Background(), CreateCourseInput{Name: name})
	if err != nil {
		t.Fatalf("create course %q: %v", name, err)
	}
	return course
}

func (e *testEnv) createModule(t *testing.T, courseID uuid.UUID, name string) *types.Module {
	t.Helper()
	module, err := e.modules.Create(context.Background(), CreateModuleInput{CourseID: courseID, Name: name})
	if err != nil {
		t.Fatalf("create module %q: %v", name, err)
	}
	return module
}

func (e *testEnv) createLesson(t *testing.T, moduleID uuid.UUID, name string) *types.Lesson {
	t.Helper()
	lesson, err := e.lessons.Create(context.Background(), CreateLessonInput{ModuleID: moduleID, Name: name})
	if err != nil {
		t.Fatalf("create lesson %q: %v", name, err)
	}
	return lesson
}
