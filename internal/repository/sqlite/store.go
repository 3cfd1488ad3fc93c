// Package sqlite is a single-file SQLite backend for the repository
// interfaces. It is meant for local development and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"brigade-backend/internal/models"
	"brigade-backend/internal/penalty"
	"brigade-backend/internal/repository"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timestamps are stored as fixed-width UTC text so ORDER BY is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements AccountStore, ViolationStore and SessionStore on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps a :memory: database on a single connection
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stores exposes s through the repository bundle.
func (s *Store) Stores() *repository.Stores {
	return &repository.Stores{
		Accounts:   Accounts{s},
		Violations: Violations{s},
		Sessions:   Sessions{s},
		Close:      func() { s.Close() },
	}
}

func (s *Store) migrate() error {
	counterDefs := make([]string, 0, penalty.NumViolations)
	for id := 1; id <= penalty.NumViolations; id++ {
		counterDefs = append(counterDefs, models.CounterKey(id)+" INTEGER NOT NULL DEFAULT 0")
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			is_admin INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS error_texts (
			id INTEGER PRIMARY KEY,
			error_text TEXT NOT NULL,
			time INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS error_history (
			id INTEGER PRIMARY KEY,
			group_name TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			time REAL NOT NULL,
			time_with_errors REAL NOT NULL,
			` + strings.Join(counterDefs, ",\n\t\t\t") + `
		);`,
		`CREATE INDEX IF NOT EXISTS idx_error_history_group_ts ON error_history(group_name, timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_error_history_time ON error_history(time);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}

	for id := 1; id <= penalty.NumViolations; id++ {
		if _, err := s.db.Exec(
			`INSERT OR IGNORE INTO error_texts (id, error_text, time) VALUES (?, ?, 0)`,
			id, models.DefaultViolationText(id),
		); err != nil {
			return err
		}
	}
	return nil
}

// Accounts is the AccountStore view of a Store.
type Accounts struct{ s *Store }

func (a Accounts) Create(ctx context.Context, account *models.Account) error {
	res, err := a.s.db.ExecContext(ctx,
		`INSERT INTO users (username, password, is_admin) VALUES (?, ?, ?)`,
		account.Username, account.PasswordHash, account.IsAdmin,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return repository.ErrDuplicateUsername
		}
		return err
	}
	account.ID, err = res.LastInsertId()
	return err
}

func (a Accounts) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return a.getOne(ctx, `SELECT id, username, password, is_admin FROM users WHERE username = ?`, username)
}

func (a Accounts) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return a.getOne(ctx, `SELECT id, username, password, is_admin FROM users WHERE id = ?`, id)
}

func (a Accounts) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	account := &models.Account{}
	err := a.s.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID, &account.Username, &account.PasswordHash, &account.IsAdmin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (a Accounts) ListUsernames(ctx context.Context, includeAdmins bool) ([]string, error) {
	rows, err := a.s.db.QueryContext(ctx,
		`SELECT username FROM users WHERE ? OR is_admin = 0 ORDER BY username`, includeAdmins)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Violations is the ViolationStore view of a Store.
type Violations struct{ s *Store }

func (v Violations) List(ctx context.Context) ([]*models.Violation, error) {
	rows, err := v.s.db.QueryContext(ctx, `SELECT id, error_text, time FROM error_texts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	violations := make([]*models.Violation, 0)
	for rows.Next() {
		vi := &models.Violation{}
		if err := rows.Scan(&vi.ID, &vi.Text, &vi.Time); err != nil {
			return nil, err
		}
		violations = append(violations, vi)
	}
	return violations, rows.Err()
}

func (v Violations) Upsert(ctx context.Context, vi *models.Violation) error {
	_, err := v.s.db.ExecContext(ctx, `
		INSERT INTO error_texts (id, error_text, time) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET error_text = excluded.error_text, time = excluded.time
	`, vi.ID, vi.Text, vi.Time)
	return err
}

// Sessions is the SessionStore view of a Store.
type Sessions struct{ s *Store }

var selectRecords = `SELECT id, group_name, timestamp, time, time_with_errors, ` +
	repository.CounterColumns() + ` FROM error_history`

func (ss Sessions) Create(ctx context.Context, rec *models.SessionRecord) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 4+penalty.NumViolations), ", ")
	query := `INSERT INTO error_history (group_name, timestamp, time, time_with_errors, ` +
		repository.CounterColumns() + `) VALUES (` + placeholders + `)`

	args := append([]any{
		rec.GroupName, rec.Timestamp.UTC().Format(timeLayout), rec.Time, rec.TimeWithErrors,
	}, repository.CounterArgs(rec)...)

	res, err := ss.s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rec.ID, err = res.LastInsertId()
	return err
}

func (ss Sessions) ListByGroup(ctx context.Context, group string) ([]*models.SessionRecord, error) {
	return ss.list(ctx, selectRecords+` WHERE group_name = ? ORDER BY timestamp DESC, id DESC`, group)
}

func (ss Sessions) ListFastest(ctx context.Context, limit int) ([]*models.SessionRecord, error) {
	return ss.list(ctx, selectRecords+` ORDER BY time ASC, id ASC LIMIT ?`, limit)
}

func (ss Sessions) ListChronological(ctx context.Context) ([]*models.SessionRecord, error) {
	return ss.list(ctx, selectRecords+` ORDER BY timestamp ASC, id ASC`)
}

func (ss Sessions) list(ctx context.Context, query string, args ...any) ([]*models.SessionRecord, error) {
	rows, err := ss.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.SessionRecord, 0)
	for rows.Next() {
		rec := &models.SessionRecord{}
		var ts string
		dest := append([]any{&rec.ID, &rec.GroupName, &ts, &rec.Time, &rec.TimeWithErrors}, repository.CounterDest(rec)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if rec.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("invalid timestamp %q on record %d: %w", ts, rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
