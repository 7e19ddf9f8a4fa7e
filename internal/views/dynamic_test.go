package views

import (
	"testing"

	"github.com/google/uuid"

	"github.com/opencourse/opencourse-backend/internal/types"
)

func dynamicTestCourse() *types.Course {
	return &types.Course{
		ID:          uuid.New(),
		Name:        "Distributed Systems",
		Slug:        "distributed-systems",
		Description: "Consensus and friends",
		Modules: []*types.Module{
			{ID: uuid.New(), Name: "Consensus", Slug: "consensus", Position: 0},
		},
	}
}

func TestNewCourseDynamicSubset(t *testing.T) {
	course := dynamicTestCourse()
	got := NewCourseDynamic(course, []string{"name", "slug"})
	if len(got) != 2 {
		t.Fatalf("field count: want=2 got=%d (%v)", len(got), got)
	}
	if got["name"] != course.Name {
		t.Fatalf("name: want=%q got=%v", course.Name, got["name"])
	}
	if got["slug"] != course.Slug {
		t.Fatalf("slug: want=%q got=%v", course.Slug, got["slug"])
	}
}

func TestNewCourseDynamicUnknownFieldIgnored(t *testing.T) {
	course := dynamicTestCourse()
	got := NewCourseDynamic(course, []string{"name", "created_at", "password"})
	if len(got) != 1 {
		t.Fatalf("field count: want=1 got=%d (%v)", len(got), got)
	}
	if _, ok := got["created_at"]; ok {
		t.Fatal("created_at must not leak through the allow-list")
	}
}

func TestNewCourseDynamicEmptyRequestKeepsDefaults(t *testing.T) {
	course := dynamicTestCourse()
	got := NewCourseDynamic(course, nil)
	for _, field := range []string{"id", "name", "slug", "description", "modules"} {
		if _, ok := got[field]; !ok {
			t.Fatalf("default set missing %q", field)
		}
	}
	if len(got) != 5 {
		t.Fatalf("field count: want=5 got=%d", len(got))
	}
}

func TestNewCourseDynamicModulesShape(t *testing.T) {
	course := dynamicTestCourse()
	got := NewCourseDynamic(course, []string{"modules"})
	modules, ok := got["modules"].([]ModuleEmbed)
	if !ok {
		t.Fatalf("modules: want []ModuleEmbed got %T", got["modules"])
	}
	if len(modules) != 1 || modules[0].Slug != "consensus" {
		t.Fatalf("modules projection wrong: %+v", modules)
	}
}
