package repository

import (
	"context"
	"errors"
	"strings"

	"brigade-backend/internal/models"
	"brigade-backend/internal/penalty"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

// AccountStore persists accounts. Implemented by UserRepo (PostgreSQL) and
// sqlite.Store.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	ListUsernames(ctx context.Context, includeAdmins bool) ([]string, error)
}

// ViolationStore persists the error catalog.
type ViolationStore interface {
	List(ctx context.Context) ([]*models.Violation, error)
	Upsert(ctx context.Context, v *models.Violation) error
}

// SessionStore persists drill runs.
type SessionStore interface {
	Create(ctx context.Context, rec *models.SessionRecord) error
	ListByGroup(ctx context.Context, group string) ([]*models.SessionRecord, error)
	ListFastest(ctx context.Context, limit int) ([]*models.SessionRecord, error)
	ListChronological(ctx context.Context) ([]*models.SessionRecord, error)
}

// Stores bundles one backend's implementations.
type Stores struct {
	Accounts   AccountStore
	Violations ViolationStore
	Sessions   SessionStore
	Close      func()
}

// CounterColumns is the comma separated list error_1, ..., error_16.
func CounterColumns() string {
	cols := make([]string, 0, penalty.NumViolations)
	for id := 1; id <= penalty.NumViolations; id++ {
		cols = append(cols, models.CounterKey(id))
	}
	return strings.Join(cols, ", ")
}

// CounterDest returns scan destinations for the counter columns of rec.
func CounterDest(rec *models.SessionRecord) []any {
	dest := make([]any, 0, penalty.NumViolations)
	for i := range rec.Errors {
		dest = append(dest, &rec.Errors[i])
	}
	return dest
}

// CounterArgs returns the counter values of rec in column order.
func CounterArgs(rec *models.SessionRecord) []any {
	args := make([]any, 0, penalty.NumViolations)
	for _, n := range rec.Errors {
		args = append(args, n)
	}
	return args
}
