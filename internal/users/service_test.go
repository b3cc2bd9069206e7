package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"jobfit-backend/internal/shared/auth"
)

func newTestService(t *testing.T) (*Service, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret", time.Hour, "dev")
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	svc := NewService(NewMemoryRepo(), tokens)
	svc.bcryptCost = bcrypt.MinCost
	return svc, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		Email:     " Ada@Example.com ",
		Password:  "secret1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      "recruiter",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Email != "ada@example.com" || res.User.Role != RoleRecruiter {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if res.User.PasswordHash == "secret1" {
		t.Fatal("password stored in clear text")
	}
	claims, err := tokens.Verify(res.Token)
	if err != nil || claims.UserID != res.User.ID || claims.Role != "RECRUITER" {
		t.Fatalf("unexpected claims %+v err=%v", claims, err)
	}

	login, err := svc.Login(ctx, "ADA@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != res.User.ID {
		t.Fatalf("login returned different user")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	in := RegisterInput{Email: "dup@example.com", Password: "secret1"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	in.Email = "DUP@example.com"
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	cases := []RegisterInput{
		{Email: "not-an-email", Password: "secret1"},
		{Email: "", Password: "secret1"},
		{Email: "short@example.com", Password: "12345"},
	}
	for _, in := range cases {
		if _, err := svc.Register(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestRegisterUnknownRoleBecomesCandidate(t *testing.T) {
	svc, _ := newTestService(t)
	res, err := svc.Register(context.Background(), RegisterInput{Email: "x@example.com", Password: "secret1", Role: "superuser"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Role != RoleCandidate {
		t.Fatalf("expected CANDIDATE, got %s", res.User.Role)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(ctx, "a@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestUpsertOAuthCreatesThenKeepsRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.UpsertOAuth(ctx, OAuthProfile{Provider: ProviderGoogle, Email: "g@example.com", FirstName: "Grace"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.User.Role != RoleCandidate || first.User.Provider != ProviderGoogle {
		t.Fatalf("unexpected new user: %+v", first.User)
	}

	stored, _ := svc.Repo.GetByID(ctx, first.User.ID)
	stored.Role = RoleAdmin
	if err := svc.Repo.Update(ctx, stored); err != nil {
		t.Fatalf("promote: %v", err)
	}

	second, err := svc.UpsertOAuth(ctx, OAuthProfile{Provider: ProviderGoogle, Email: "G@example.com", LastName: "Hopper"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.User.ID != first.User.ID || second.User.Role != RoleAdmin || second.User.LastName != "Hopper" {
		t.Fatalf("unexpected refreshed user: %+v", second.User)
	}

	if _, err := svc.Login(ctx, "g@example.com", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("oauth-only account must not accept passwords, got %v", err)
	}
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{"": RoleCandidate, "admin": RoleAdmin, " Recruiter ": RoleRecruiter, "x": RoleCandidate}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Fatalf("ParseRole(%q) = %s, want %s", in, got, want)
		}
	}
	if RoleCandidate.CanPostJobs() || !RoleRecruiter.CanPostJobs() || !RoleAdmin.CanPostJobs() {
		t.Fatal("unexpected CanPostJobs result")
	}
}
