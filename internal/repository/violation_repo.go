package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"brigade-backend/internal/models"
)

type ViolationRepo struct {
	pool *pgxpool.Pool
}

func NewViolationRepo(pool *pgxpool.Pool) *ViolationRepo {
	return &ViolationRepo{pool: pool}
}

func (r *ViolationRepo) List(ctx context.Context) ([]*models.Violation, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, error_text, time FROM error_texts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	violations := make([]*models.Violation, 0)
	for rows.Next() {
		v := &models.Violation{}
		if err := rows.Scan(&v.ID, &v.Text, &v.Time); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

func (r *ViolationRepo) Upsert(ctx context.Context, v *models.Violation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO error_texts (id, error_text, time)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET error_text = EXCLUDED.error_text,
			time = EXCLUDED.time
	`, v.ID, v.Text, v.Time)
	return err
}
