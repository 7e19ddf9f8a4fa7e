package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/pkg/logger"
	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
	"github.com/opencourse/opencourse-backend/internal/repos"
	"github.com/opencourse/opencourse-backend/internal/types"
)

// staleReadProgressRepo misses the (user, lesson) row on the first read, the
// way the loser of a concurrent first-mark sees the table before the winner's
// insert lands on the unique index.
type staleReadProgressRepo struct {
	repos.LessonProgressRepo
	missed bool
}

func (r *staleReadProgressRepo) GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID, lessonID uuid.UUID) (*types.LessonProgress, error) {
	if !r.missed {
		r.missed = true
		return nil, gorm.ErrRecordNotFound
	}
	return r.LessonProgressRepo.GetByUserAndLesson(ctx, tx, userID, lessonID)
}

func TestMarkCompleteRecoversFromConcurrentInsert(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Course")
	module := env.createModule(t, course.ID, "Unit")
	lesson := env.createLesson(t, module.ID, "Part")
	user := createTestUser(t, env.db)

	// The row a concurrent writer inserted between the read and the create.
	winner := &types.LessonProgress{
		ID:       uuid.New(),
		UserID:   user.ID,
		LessonID: lesson.ID,
	}
	if err := env.db.Create(winner).Error; err != nil {
		t.Fatalf("seed progress row: %v", err)
	}

	log := logger.NewNop()
	svc := NewProgressService(
		env.db,
		log,
		repos.NewLessonRepo(env.db, log),
		&staleReadProgressRepo{LessonProgressRepo: repos.NewLessonProgressRepo(env.db, log)},
	)

	row, err := svc.MarkComplete(ctxWithUser(user.ID), lesson.ID)
	if err != nil {
		t.Fatalf("mark complete after lost insert race: %v", err)
	}
	if row.ID != winner.ID {
		t.Fatalf("must update the winner's row, not insert another: want=%s got=%s", winner.ID, row.ID)
	}
	if !row.Completed || row.CompletedAt == nil {
		t.Fatalf("row not completed: %+v", row)
	}

	var count int64
	if err := env.db.Model(&types.LessonProgress{}).Count(&count).Error; err != nil {
		t.Fatalf("count progress rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("progress rows: want=1 got=%d", count)
	}
}

func TestMarkCompleteAnonymousUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Course")
	module := env.createModule(t, course.ID, "Unit")
	lesson := env.createLesson(t, module.ID, "Part")

	_, err := env.progress.MarkComplete(context.Background(), lesson.ID)
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusUnauthorized {
		t.Fatalf("want unauthorized for anonymous caller, got %v", err)
	}
}

func TestMarkCompleteUnknownLessonNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db)
	_, err := env.progress.MarkComplete(ctxWithUser(user.ID), uuid.New())
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestMarkCompleteIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Course")
	module := env.createModule(t, course.ID, "Unit")
	lesson := env.createLesson(t, module.ID, "Part")
	user := createTestUser(t, env.db)
	ctx := ctxWithUser(user.ID)

	first, err := env.progress.MarkComplete(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if !first.Completed || first.CompletedAt == nil {
		t.Fatalf("first mark must complete with a timestamp: %+v", first)
	}

	second, err := env.progress.MarkComplete(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("re-mark must keep the first timestamp: first=%v second=%v", first.CompletedAt, second.CompletedAt)
	}

	var count int64
	if err := env.db.Model(&types.LessonProgress{}).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("progress rows: want=1 got=%d", count)
	}
}

func TestSetCompletedFalseClearsTimestamp(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Course")
	module := env.createModule(t, course.ID, "Unit")
	lesson := env.createLesson(t, module.ID, "Part")
	user := createTestUser(t, env.db)
	ctx := ctxWithUser(user.ID)

	if _, err := env.progress.MarkComplete(ctx, lesson.ID); err != nil {
		t.Fatalf("mark: %v", err)
	}
	row, err := env.progress.SetCompleted(ctx, lesson.ID, false)
	if err != nil {
		t.Fatalf("unmark: %v", err)
	}
	if row.Completed {
		t.Fatal("row must be incomplete after unmark")
	}
	if row.CompletedAt != nil {
		t.Fatalf("completed_at must clear with the flag, got %v", row.CompletedAt)
	}
}

func TestCompletionPercentage(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Course")
	module := env.createModule(t, course.ID, "Unit")
	user := createTestUser(t, env.db)
	ctx := ctxWithUser(user.ID)

	// No lessons yet: zero, not a division error.
	pct, err := env.progress.CompletionPercentage(ctx, user.ID, course.ID)
	if err != nil {
		t.Fatalf("empty course: %v", err)
	}
	if pct != 0.0 {
		t.Fatalf("empty course pct: want=0.0 got=%v", pct)
	}

	lessons := make([]*types.Lesson, 0, 4)
	for _, name := range []string{"A", "B", "C", "D"} {
		lessons = append(lessons, env.createLesson(t, module.ID, name))
	}

	if _, err := env.progress.MarkComplete(ctx, lessons[0].ID); err != nil {
		t.Fatalf("mark: %v", err)
	}
	pct, err = env.progress.CompletionPercentage(ctx, user.ID, course.ID)
	if err != nil {
		t.Fatalf("one of four: %v", err)
	}
	if pct != 25.0 {
		t.Fatalf("pct: want=25.0 got=%v", pct)
	}
}

func TestCompletionPercentageRoundsToTwoDecimals(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Course")
	module := env.createModule(t, course.ID, "Unit")
	user := createTestUser(t, env.db)
	ctx := ctxWithUser(user.ID)

	lessons := make([]*types.Lesson, 0, 3)
	for _, name := range []string{"A", "B", "C"} {
		lessons = append(lessons, env.createLesson(t, module.ID, name))
	}
	for _, lesson := range lessons[:2] {
		if _, err := env.progress.MarkComplete(ctx, lesson.ID); err != nil {
			t.Fatalf("mark: %v", err)
		}
	}

	pct, err := env.progress.CompletionPercentage(ctx, user.ID, course.ID)
	if err != nil {
		t.Fatalf("two of three: %v", err)
	}
	if pct != 66.67 {
		t.Fatalf("pct: want=66.67 got=%v", pct)
	}
}

func TestCompletionPercentageIgnoresUnmarkedRows(t *testing.T) {
	env := newTestEnv(t)
	course := env.createCourse(t, "Course")
	module := env.createModule(t, course.ID, "Unit")
	a := env.createLesson(t, module.ID, "A")
	env.createLesson(t, module.ID, "B")
	user := createTestUser(t, env.db)
	ctx := ctxWithUser(user.ID)

	// Mark then unmark: the row exists but counts as incomplete.
	if _, err := env.progress.MarkComplete(ctx, a.ID); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if _, err := env.progress.SetCompleted(ctx, a.ID, false); err != nil {
		t.Fatalf("unmark: %v", err)
	}

	pct, err := env.progress.CompletionPercentage(ctx, user.ID, course.ID)
	if err != nil {
		t.Fatalf("pct: %v", err)
	}
	if pct != 0.0 {
		t.Fatalf("pct: want=0.0 got=%v", pct)
	}
}
