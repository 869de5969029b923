package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const pgUniqueViolation = "23505"

type PostgresPartnerRepo struct {
	db *sqlx.DB
}

func NewPostgresPartnerRepo(db *sqlx.DB) *PostgresPartnerRepo {
	repo := &PostgresPartnerRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresPartnerRepo) Save(ctx context.Context, name, apiKeyHash, keyPrefix string) (*model.Partner, error) {
	var p model.Partner
	query := `INSERT INTO partners (name, api_key_hash, key_prefix)
	          VALUES ($1, $2, $3)
	          RETURNING id, name, api_key_hash, key_prefix, created_at, updated_at`

	err := r.db.GetContext(ctx, &p, query, name, apiKeyHash, keyPrefix)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicatePartnerName
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPartnerRepo) GetByName(ctx context.Context, name string) (*model.Partner, error) {
	var p model.Partner
	query := `SELECT id, name, api_key_hash, key_prefix, created_at, updated_at
	          FROM partners WHERE name = $1 LIMIT 1`
	if err := r.db.GetContext(ctx, &p, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPartnerRepo) GetByID(ctx context.Context, id int64) (*model.Partner, error) {
	var p model.Partner
	query := `SELECT id, name, api_key_hash, key_prefix, created_at, updated_at
	          FROM partners WHERE id = $1 LIMIT 1`
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByKeyPrefix narrows API-key verification to the partners sharing the
// presented key's non-secret prefix. Usually zero or one row.
func (r *PostgresPartnerRepo) ListByKeyPrefix(ctx context.Context, prefix string) ([]*model.Partner, error) {
	query := `SELECT id, name, api_key_hash, key_prefix, created_at, updated_at
	          FROM partners WHERE key_prefix = $1 ORDER BY created_at DESC`
	return r.selectPartners(ctx, query, prefix)
}

func (r *PostgresPartnerRepo) ListAll(ctx context.Context) ([]*model.Partner, error) {
	query := `SELECT id, name, api_key_hash, key_prefix, created_at, updated_at
	          FROM partners ORDER BY created_at DESC`
	return r.selectPartners(ctx, query)
}

func (r *PostgresPartnerRepo) selectPartners(ctx context.Context, query string, args ...interface{}) ([]*model.Partner, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	partners := make([]*model.Partner, 0)
	for rows.Next() {
		var p model.Partner
		if err := rows.StructScan(&p); err != nil {
			return nil, err
		}
		partners = append(partners, &p)
	}
	return partners, rows.Err()
}

// Delete hard-deletes a partner; dependent credential rows go with it via
// the FK cascade.
func (r *PostgresPartnerRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

func (r *PostgresPartnerRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS partners (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			api_key_hash TEXT NOT NULL,
			key_prefix TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_partners_key_prefix ON partners (key_prefix)`)
	return nil
}
