package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"brigade-backend/internal/models"
	"brigade-backend/internal/penalty"
)

type SessionRecordRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRecordRepo(pool *pgxpool.Pool) *SessionRecordRepo {
	return &SessionRecordRepo{pool: pool}
}

var selectRecords = `SELECT id, group_name, timestamp, time, time_with_errors, ` + CounterColumns() + ` FROM error_history`

func (r *SessionRecordRepo) Create(ctx context.Context, rec *models.SessionRecord) error {
	placeholders := make([]string, 0, 4+penalty.NumViolations)
	for i := 1; i <= 4+penalty.NumViolations; i++ {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i))
	}

	query := `INSERT INTO error_history (group_name, timestamp, time, time_with_errors, ` + CounterColumns() + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		RETURNING id`

	args := append([]any{rec.GroupName, rec.Timestamp, rec.Time, rec.TimeWithErrors}, CounterArgs(rec)...)
	return r.pool.QueryRow(ctx, query, args...).Scan(&rec.ID)
}

func (r *SessionRecordRepo) ListByGroup(ctx context.Context, group string) ([]*models.SessionRecord, error) {
	return r.list(ctx, selectRecords+` WHERE group_name = $1 ORDER BY timestamp DESC, id DESC`, group)
}

func (r *SessionRecordRepo) ListFastest(ctx context.Context, limit int) ([]*models.SessionRecord, error) {
	return r.list(ctx, selectRecords+` ORDER BY time ASC, id ASC LIMIT $1`, limit)
}

func (r *SessionRecordRepo) ListChronological(ctx context.Context) ([]*models.SessionRecord, error) {
	return r.list(ctx, selectRecords+` ORDER BY timestamp ASC, id ASC`)
}

func (r *SessionRecordRepo) list(ctx context.Context, query string, args ...any) ([]*models.SessionRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]*models.SessionRecord, error) {
	defer rows.Close()

	records := make([]*models.SessionRecord, 0)
	for rows.Next() {
		rec := &models.SessionRecord{}
		dest := append([]any{&rec.ID, &rec.GroupName, &rec.Timestamp, &rec.Time, &rec.TimeWithErrors}, CounterDest(rec)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
