package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
)

func TestGetMeAnonymousUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.GetMe(context.Background())
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusUnauthorized {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestGetMeLoadsProfile(t *testing.T) {
	env := newTestEnv(t)
	user := registerTestAccount(t, env, "ada@example.com")

	me, err := env.users.GetMe(ctxWithUser(user.ID))
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if me.Profile == nil || me.Profile.DisplayName != "Ada Lovelace" {
		t.Fatalf("profile must preload: %+v", me.Profile)
	}
}

func TestUpdateMeUpdatesUserAndProfile(t *testing.T) {
	env := newTestEnv(t)
	user := registerTestAccount(t, env, "ada@example.com")
	ctx := ctxWithUser(user.ID)

	firstName := "Augusta"
	displayName := "Countess of Lovelace"
	bio := "First programmer."
	updated, err := env.users.UpdateMe(ctx, UpdateMeInput{
		FirstName:   &firstName,
		DisplayName: &displayName,
		Bio:         &bio,
	})
	if err != nil {
		t.Fatalf("update me: %v", err)
	}
	if updated.FirstName != "Augusta" {
		t.Fatalf("first name: want=%q got=%q", "Augusta", updated.FirstName)
	}
	if updated.LastName != "Lovelace" {
		t.Fatalf("untouched last name changed: got=%q", updated.LastName)
	}
	if updated.Profile == nil || updated.Profile.DisplayName != displayName || updated.Profile.Bio != bio {
		t.Fatalf("profile update wrong: %+v", updated.Profile)
	}

	// Re-read through GetMe to confirm persistence.
	me, err := env.users.GetMe(ctx)
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if me.Profile == nil || me.Profile.Bio != bio {
		t.Fatalf("persisted profile wrong: %+v", me.Profile)
	}
}
