package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
	"github.com/opencourse/opencourse-backend/internal/repos"
)

func TestTagSlugCollisionGetsSuffix(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.tags.Create(ctx, CreateLookupInput{Name: "Go"})
	if err != nil {
		t.Fatalf("first tag: %v", err)
	}
	second, err := env.tags.Create(ctx, CreateLookupInput{Name: "Go"})
	if err != nil {
		t.Fatalf("second tag: %v", err)
	}
	if first.Slug != "go" || second.Slug != "go-2" {
		t.Fatalf("slugs: want go/go-2 got %q/%q", first.Slug, second.Slug)
	}
}

func TestTagAndTopicSlugScopesAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tag, err := env.tags.Create(ctx, CreateLookupInput{Name: "Go"})
	if err != nil {
		t.Fatalf("tag: %v", err)
	}
	topic, err := env.topics.Create(ctx, CreateLookupInput{Name: "Go"})
	if err != nil {
		t.Fatalf("topic: %v", err)
	}
	if tag.Slug != "go" || topic.Slug != "go" {
		t.Fatalf("slugs: want both %q, got %q and %q", "go", tag.Slug, topic.Slug)
	}
}

func TestTagExplicitDuplicateSlugConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.tags.Create(ctx, CreateLookupInput{Name: "A", Slug: "fixed"}); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := env.tags.Create(ctx, CreateLookupInput{Name: "B", Slug: "fixed"})
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusConflict {
		t.Fatalf("want conflict, got %v", err)
	}
}

func TestTopicListSortsByPosition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i, name := range []string{"Gamma", "Alpha", "Beta"} {
		pos := []int{2, 0, 1}[i]
		if _, err := env.topics.Create(ctx, CreateLookupInput{Name: name, Position: pos}); err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
	}

	list, err := env.topics.List(ctx, repos.LookupFilter{Sort: "order"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Alpha", "Beta", "Gamma"}
	for i, topic := range list {
		if topic.Name != want[i] {
			t.Fatalf("topic %d: want=%q got=%q", i, want[i], topic.Name)
		}
	}
}

func TestTagNameRequired(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.tags.Create(context.Background(), CreateLookupInput{})
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusBadRequest {
		t.Fatalf("want validation error, got %v", err)
	}
}
