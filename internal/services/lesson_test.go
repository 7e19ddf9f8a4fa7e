package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/types"
)

func TestLessonSlugScopedToModule(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Course")
	first := env.createModule(t, course.ID, "Unit 1")
	second := env.createModule(t, course.ID, "Unit 2")

	l1 := env.createLesson(t, first.ID, "Overview")
	l2 := env.createLesson(t, second.ID, "Overview")
	if l1.Slug != "overview" || l2.Slug != "overview" {
		t.Fatalf("slugs: want both %q, got %q and %q", "overview", l1.Slug, l2.Slug)
	}

	l3 := env.createLesson(t, first.ID, "Overview")
	if l3.Slug != "overview-2" {
		t.Fatalf("scoped collision slug: want=%q got=%q", "overview-2", l3.Slug)
	}
}

func TestLessonDurationBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Course")
	module := env.createModule(t, course.ID, "Unit")

	cases := []struct {
		name     string
		duration int
		wantErr  bool
	}{
		{"zero", 0, false},
		{"max", types.MaxLessonDurationSeconds, false},
		{"negative", -1, true},
		{"over max", types.MaxLessonDurationSeconds + 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.lessons.Create(ctx, CreateLessonInput{
				ModuleID:        module.ID,
				Name:            "Timed " + tc.name,
				DurationSeconds: tc.duration,
			})
			if tc.wantErr {
				ae := apierr.From(err)
				if ae == nil || ae.Status != http.StatusBadRequest {
					t.Fatalf("want validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateLessonRouteParentOverridesBody(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Course")
	bodyModule := env.createModule(t, course.ID, "Body")
	routeModule := env.createModule(t, course.ID, "Route")

	lesson, err := env.lessons.Create(ctx, CreateLessonInput{
		ModuleID:      bodyModule.ID,
		ForceModuleID: routeModule.ID,
		Name:          "Part",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lesson.ModuleID != routeModule.ID {
		t.Fatalf("module id: want route parent %s got %s", routeModule.ID, lesson.ModuleID)
	}
}

func TestCreateLessonUnknownModuleNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.lessons.Create(context.Background(), CreateLessonInput{
		ModuleID: uuid.New(),
		Name:     "Orphan",
	})
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestListForModuleScopesToParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Course")
	mine := env.createModule(t, course.ID, "Mine")
	other := env.createModule(t, course.ID, "Other")
	env.createLesson(t, mine.ID, "Kept")
	env.createLesson(t, other.ID, "Excluded")

	list, err := env.lessons.ListForModule(ctx, mine.ID, repos.LessonFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Kept" {
		t.Fatalf("scoping wrong: %+v", list)
	}
}

func TestDeleteModuleCascadesLessons(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.createCourse(t, "Course")
	module := env.createModule(t, course.ID, "Unit")
	env.createLesson(t, module.ID, "Part")

	if err := env.modules.Delete(ctx, module.ID); err != nil {
		t.Fatalf("delete module: %v", err)
	}
	var count int64
	if err := env.db.Model(&types.Lesson{}).Count(&count).Error; err != nil {
		t.Fatalf("count lessons: %v", err)
	}
	if count != 0 {
		t.Fatalf("lessons must cascade with the module, found %d", count)
	}
}
