package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"brigade-backend/internal/models"
)

const uniqueViolation = "23505"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO users (username, password, is_admin)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query, account.Username, account.PasswordHash, account.IsAdmin).Scan(&account.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateUsername
	}
	return err
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT id, username, password, is_admin FROM users WHERE username = $1`, username)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, `SELECT id, username, password, is_admin FROM users WHERE id = $1`, id)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	account := &models.Account{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID, &account.Username, &account.PasswordHash, &account.IsAdmin,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *UserRepo) ListUsernames(ctx context.Context, includeAdmins bool) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT username FROM users
		WHERE $1 OR is_admin = FALSE
		ORDER BY username`, includeAdmins)
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
