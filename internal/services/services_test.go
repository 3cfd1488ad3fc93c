package services

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"brigade-backend/internal/models"
	"brigade-backend/internal/repository"
	"brigade-backend/internal/repository/sqlite"
)

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(accountID int64) (string, error) {
	return "token-" + strconv.FormatInt(accountID, 10), nil
}

type stubThrottle struct {
	blocked  bool
	failures map[string]int
	resets   int
}

func (s *stubThrottle) Blocked(ctx context.Context, username string) (bool, error) {
	return s.blocked, nil
}

func (s *stubThrottle) Failed(ctx context.Context, username string) error {
	if s.failures == nil {
		s.failures = make(map[string]int)
	}
	s.failures[username]++
	return nil
}

func (s *stubThrottle) Reset(ctx context.Context, username string) error {
	s.resets++
	return nil
}

type testEnv struct {
	stores     *repository.Stores
	auth       *AuthService
	submission *SubmissionService
	reporting  *ReportingService
}

func newTestEnv(t *testing.T, throttle LoginThrottle) *testEnv {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	stores := store.Stores()
	t.Cleanup(stores.Close)

	auth := NewAuthService(stores.Accounts, stubTokens{}, throttle)
	auth.hashCost = bcrypt.MinCost

	return &testEnv{
		stores:     stores,
		auth:       auth,
		submission: NewSubmissionService(auth, stores.Violations, stores.Sessions),
		reporting:  NewReportingService(stores.Accounts, stores.Violations, stores.Sessions),
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.Account {
	t.Helper()
	account, err := e.auth.Register(context.Background(), models.RegisterRequest{Username: username, Password: "pw-" + username})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return account
}
