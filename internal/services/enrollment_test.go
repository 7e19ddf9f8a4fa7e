package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
)

func TestEnrollAnonymousUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Course")
	_, err := env.enrollments.Enroll(context.Background(), course.ID)
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusUnauthorized {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestEnrollUnknownCourseNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db)
	_, err := env.enrollments.Enroll(ctxWithUser(user.ID), uuid.New())
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestEnrollTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Course")
	user := createTestUser(t, env.db)
	ctx := ctxWithUser(user.ID)

	if _, err := env.enrollments.Enroll(ctx, course.ID); err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	_, err := env.enrollments.Enroll(ctx, course.ID)
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusConflict {
		t.Fatalf("want conflict on second enroll, got %v", err)
	}
}

func TestEnrollDifferentUsersSameCourse(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Course")
	alice := createTestUser(t, env.db)
	bob := createTestUser(t, env.db)

	if _, err := env.enrollments.Enroll(ctxWithUser(alice.ID), course.ID); err != nil {
		t.Fatalf("enroll alice: %v", err)
	}
	if _, err := env.enrollments.Enroll(ctxWithUser(bob.ID), course.ID); err != nil {
		t.Fatalf("enroll bob: %v", err)
	}
}

func TestListMinePreloadsCourse(t *testing.T) {
	env := newTestEnv(t)
	mine := env.createCourse(t, "Mine")
	other := env.createCourse(t, "Other")
	me := createTestUser(t, env.db)
	someone := createTestUser(t, env.db)

	if _, err := env.enrollments.Enroll(ctxWithUser(me.ID), mine.ID); err != nil {
		t.Fatalf("enroll me: %v", err)
	}
	if _, err := env.enrollments.Enroll(ctxWithUser(someone.ID), other.ID); err != nil {
		t.Fatalf("enroll someone: %v", err)
	}

	list, err := env.enrollments.ListMine(ctxWithUser(me.ID))
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("enrollment count: want=1 got=%d", len(list))
	}
	if list[0].Course == nil || list[0].Course.ID != mine.ID {
		t.Fatalf("course must preload: %+v", list[0])
	}
}
