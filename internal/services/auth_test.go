package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
	"github.com/opencourse/opencourse-backend/internal/requestdata"
	"github.com/opencourse/opencourse-backend/internal/types"
)

func registerTestAccount(t *testing.T, env *testEnv, email string) *types.User {
	t.Helper()
	user := &types.User{
		Email:     email,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "s3cret-pw",
	}
	if err := env.auth.RegisterUser(context.Background(), user); err != nil {
		t.Fatalf("register %q: %v", email, err)
	}
	return user
}

func TestRegisterCreatesProfile(t *testing.T) {
	env := newTestEnv(t)
	user := registerTestAccount(t, env, "ada@example.com")

	if user.Profile == nil {
		t.Fatal("registration must create the profile")
	}
	if user.Profile.DisplayName != "Ada Lovelace" {
		t.Fatalf("display name: want=%q got=%q", "Ada Lovelace", user.Profile.DisplayName)
	}
	if user.Password == "s3cret-pw" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	registerTestAccount(t, env, "ada@example.com")

	dup := &types.User{Email: "Ada@Example.com", Password: "another-pw"}
	err := env.auth.RegisterUser(context.Background(), dup)
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusConflict {
		t.Fatalf("want conflict for duplicate email, got %v", err)
	}
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	registerTestAccount(t, env, "ada@example.com")

	_, _, err := env.auth.LoginUser(context.Background(), "ada@example.com", "wrong")
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusUnauthorized {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestLoginTokenRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	user := registerTestAccount(t, env, "ada@example.com")
	ctx := context.Background()

	access, refresh, err := env.auth.LoginUser(ctx, "ada@example.com", "s3cret-pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("login must return both tokens")
	}

	authedCtx, err := env.auth.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("set context: %v", err)
	}
	if got := requestdata.UserID(authedCtx); got != user.ID {
		t.Fatalf("identity: want=%s got=%s", user.ID, got)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	registerTestAccount(t, env, "ada@example.com")
	ctx := context.Background()

	_, refresh, err := env.auth.LoginUser(ctx, "ada@example.com", "s3cret-pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	access2, refresh2, err := env.auth.RefreshUser(ctx, refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access2 == "" || refresh2 == refresh {
		t.Fatal("refresh must issue a new token pair")
	}

	// The old refresh token is spent.
	_, _, err = env.auth.RefreshUser(ctx, refresh)
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusUnauthorized {
		t.Fatalf("want unauthorized for spent refresh token, got %v", err)
	}
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	env := newTestEnv(t)
	user := registerTestAccount(t, env, "ada@example.com")
	ctx := context.Background()

	access, _, err := env.auth.LoginUser(ctx, "ada@example.com", "s3cret-pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := env.auth.LogoutUser(ctxWithUser(user.ID)); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err = env.auth.SetContextFromToken(ctx, access)
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusUnauthorized {
		t.Fatalf("want unauthorized after logout, got %v", err)
	}
}
