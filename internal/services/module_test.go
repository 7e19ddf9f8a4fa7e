package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
	"github.com/opencourse/opencourse-backend/internal/repos"
)

func TestModuleSlugScopedToCourse(t *testing.T) {
	env := newTestEnv(t)
	first := env.createCourse(t, "Course One")
	second := env.createCourse(t, "Course Two")

	m1 := env.createModule(t, first.ID, "Introduction")
	m2 := env.createModule(t, second.ID, "Introduction")

	// Same name in different courses keeps the clean slug in both.
	if m1.Slug != "introduction" || m2.Slug != "introduction" {
		t.Fatalf("slugs: want both %q, got %q and %q", "introduction", m1.Slug, m2.Slug)
	}

	// Inside one course the collision gets a suffix.
	m3 := env.createModule(t, first.ID, "Introduction")
	if m3.Slug != "introduction-2" {
		t.Fatalf("scoped collision slug: want=%q got=%q", "introduction-2", m3.Slug)
	}
}

func TestCreateModuleRouteParentOverridesBody(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bodyCourse := env.createCourse(t, "Body Course")
	routeCourse := env.createCourse(t, "Route Course")

	module, err := env.modules.Create(ctx, CreateModuleInput{
		CourseID:      bodyCourse.ID,
		ForceCourseID: routeCourse.ID,
		Name:          "Unit",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if module.CourseID != routeCourse.ID {
		t.Fatalf("course id: want route parent %s got %s", routeCourse.ID, module.CourseID)
	}
}

func TestCreateModuleUnknownCourseNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.modules.Create(context.Background(), CreateModuleInput{
		CourseID: uuid.New(),
		Name:     "Orphan",
	})
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestListForCourseUnknownCourseNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.modules.ListForCourse(context.Background(), uuid.New(), repos.ModuleFilter{})
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestListForCourseScopesToParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mine := env.createCourse(t, "Mine")
	other := env.createCourse(t, "Other")
	env.createModule(t, mine.ID, "Kept")
	env.createModule(t, other.ID, "Excluded")

	list, err := env.modules.ListForCourse(ctx, mine.ID, repos.ModuleFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Kept" {
		t.Fatalf("scoping wrong: %+v", list)
	}
}

func TestModuleDeleteUnknownNotFound(t *testing.T) {
	env := newTestEnv(t)
	err := env.modules.Delete(context.Background(), uuid.New())
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}
