package services

import (
	"context"
	"testing"

	"brigade-backend/internal/models"
)

func TestRegister_DuplicateUsernameConflicts(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	if _, err := env.auth.Register(ctx, models.RegisterRequest{Username: "alice", Password: "pw1"}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := env.auth.Register(ctx, models.RegisterRequest{Username: "alice", Password: "pw2"})
	if _, ok := err.(*ConflictError); !ok {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name  string
		req   models.RegisterRequest
		field string
	}{
		{"missing username", models.RegisterRequest{Password: "pw"}, "username"},
		{"blank username", models.RegisterRequest{Username: "   ", Password: "pw"}, "username"},
		{"missing password", models.RegisterRequest{Username: "bob"}, "password"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), tc.req)
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T (%v)", err, err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Errorf("expected field %q in %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestRegister_SaltedHashes(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	a, err := env.auth.Register(ctx, models.RegisterRequest{Username: "zug-a", Password: "same"})
	if err != nil {
		t.Fatalf("register a: %v", err)
	}
	b, err := env.auth.Register(ctx, models.RegisterRequest{Username: "zug-b", Password: "same"})
	if err != nil {
		t.Fatalf("register b: %v", err)
	}

	if a.PasswordHash == b.PasswordHash {
		t.Fatal("expected different hashes for the same password")
	}
	if a.PasswordHash == "same" {
		t.Fatal("password stored in plaintext")
	}
	if a.IsAdmin || b.IsAdmin {
		t.Fatal("registered accounts must not be admins")
	}
}

func TestLogin_WrongPasswordThenCorrect(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice, err := env.auth.Register(ctx, models.RegisterRequest{Username: "alice", Password: "pw1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = env.auth.Login(ctx, models.LoginRequest{Username: "alice", Password: "wrong"})
	wrongPw, ok := err.(*UnauthorizedError)
	if !ok {
		t.Fatalf("expected UnauthorizedError, got %T (%v)", err, err)
	}

	_, err = env.auth.Login(ctx, models.LoginRequest{Username: "nobody", Password: "pw1"})
	unknown, ok := err.(*UnauthorizedError)
	if !ok {
		t.Fatalf("expected UnauthorizedError for unknown user, got %T (%v)", err, err)
	}
	if wrongPw.Message != unknown.Message {
		t.Errorf("failure messages leak which check failed: %q vs %q", wrongPw.Message, unknown.Message)
	}

	tok, err := env.auth.Login(ctx, models.LoginRequest{Username: "alice", Password: "pw1"})
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if want, _ := (stubTokens{}).GenerateAccessToken(alice.ID); tok.AccessToken != want {
		t.Errorf("expected token %q, got %q", want, tok.AccessToken)
	}
}

func TestLogin_Throttle(t *testing.T) {
	throttle := &stubThrottle{}
	env := newTestEnv(t, throttle)
	ctx := context.Background()
	env.register(t, "zug-a")

	env.auth.Login(ctx, models.LoginRequest{Username: "zug-a", Password: "nope"})
	if throttle.failures["zug-a"] != 1 {
		t.Fatalf("expected one recorded failure, got %v", throttle.failures)
	}

	if _, err := env.auth.Login(ctx, models.LoginRequest{Username: "zug-a", Password: "pw-zug-a"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if throttle.resets != 1 {
		t.Fatalf("expected counter reset after success, got %d", throttle.resets)
	}

	throttle.blocked = true
	_, err := env.auth.Login(ctx, models.LoginRequest{Username: "zug-a", Password: "pw-zug-a"})
	if _, ok := err.(*RateLimitError); !ok {
		t.Fatalf("expected RateLimitError while blocked, got %T (%v)", err, err)
	}
}

func TestCreateAdmin_HiddenFromGroupList(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.register(t, "zug-a")

	admin, err := env.auth.CreateAdmin(ctx, "kommandant", "secret")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if !admin.IsAdmin {
		t.Fatal("expected admin flag")
	}

	names, err := env.reporting.AccountNames(ctx)
	if err != nil {
		t.Fatalf("account names: %v", err)
	}
	if len(names) != 1 || names[0] != "zug-a" {
		t.Fatalf("expected only zug-a, got %v", names)
	}
}

func TestAccount_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.auth.Account(context.Background(), 12345)
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %T (%v)", err, err)
	}
}
