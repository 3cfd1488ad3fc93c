package database

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"brigade-backend/internal/repository"
	"brigade-backend/internal/repository/sqlite"
)

const sqliteScheme = "sqlite://"

// IsSQLite reports whether databaseURL selects the SQLite backend.
func IsSQLite(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, sqliteScheme)
}

// OpenStores connects to the backend named by databaseURL and brings its
// schema up to date. PostgreSQL URLs run the numbered migrations in
// migrations; "sqlite://<path>" opens a local file with a built-in schema.
func OpenStores(ctx context.Context, databaseURL string, migrations fs.FS) (*repository.Stores, error) {
	if IsSQLite(databaseURL) {
		store, err := sqlite.Open(strings.TrimPrefix(databaseURL, sqliteScheme))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return store.Stores(), nil
	}

	pool, err := NewPostgresPool(databaseURL)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, pool, migrations); err != nil {
		pool.Close()
		return nil, err
	}

	return &repository.Stores{
		Accounts:   repository.NewUserRepo(pool),
		Violations: repository.NewViolationRepo(pool),
		Sessions:   repository.NewSessionRecordRepo(pool),
		Close:      pool.Close,
	}, nil
}
