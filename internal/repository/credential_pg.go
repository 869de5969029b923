package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/jmoiron/sqlx"
)

type PostgresCredentialRepo struct {
	db *sqlx.DB
}

func NewPostgresCredentialRepo(db *sqlx.DB) *PostgresCredentialRepo {
	repo := &PostgresCredentialRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

// Upsert inserts the credential row or, when one already exists for the
// (partner, account) pair, rotates key and secret in place and
// reactivates it. The unique constraint guarantees a single row per pair.
func (r *PostgresCredentialRepo) Upsert(ctx context.Context, partnerID int64, accountID, orderlyKey, orderlySecret string) (*model.OrderlyCredential, error) {
	var c model.OrderlyCredential
	query := `INSERT INTO orderly_credentials (partner_id, account_id, orderly_key, orderly_secret)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (partner_id, account_id)
	          DO UPDATE SET
	            orderly_key = EXCLUDED.orderly_key,
	            orderly_secret = EXCLUDED.orderly_secret,
	            is_active = TRUE,
	            updated_at = now()
	          RETURNING id, partner_id, account_id, orderly_key, orderly_secret, is_active, created_at, updated_at`

	if err := r.db.GetContext(ctx, &c, query, partnerID, accountID, orderlyKey, orderlySecret); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetForPartner returns the active credential for (partnerID, accountID).
// The partner id is part of the lookup key so a credential belonging to a
// different partner is unreachable by construction.
func (r *PostgresCredentialRepo) GetForPartner(ctx context.Context, partnerID int64, accountID string) (*model.OrderlyCredential, error) {
	var c model.OrderlyCredential
	query := `SELECT id, partner_id, account_id, orderly_key, orderly_secret, is_active, created_at, updated_at
	          FROM orderly_credentials
	          WHERE partner_id = $1 AND account_id = $2 AND is_active = TRUE
	          LIMIT 1`
	if err := r.db.GetContext(ctx, &c, query, partnerID, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCredentialRepo) ListForPartner(ctx context.Context, partnerID int64) ([]*model.OrderlyCredential, error) {
	query := `SELECT id, partner_id, account_id, orderly_key, orderly_secret, is_active, created_at, updated_at
	          FROM orderly_credentials
	          WHERE partner_id = $1 AND is_active = TRUE
	          ORDER BY created_at DESC`
	rows, err := r.db.QueryxContext(ctx, query, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	creds := make([]*model.OrderlyCredential, 0)
	for rows.Next() {
		var c model.OrderlyCredential
		if err := rows.StructScan(&c); err != nil {
			return nil, err
		}
		creds = append(creds, &c)
	}
	return creds, rows.Err()
}

// Deactivate is a soft delete and idempotent; rows are only hard-deleted
// through the partner cascade.
func (r *PostgresCredentialRepo) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orderly_credentials SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	return err
}

func (r *PostgresCredentialRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS orderly_credentials (
			id BIGSERIAL PRIMARY KEY,
			partner_id BIGINT NOT NULL REFERENCES partners(id) ON DELETE CASCADE,
			account_id TEXT NOT NULL,
			orderly_key TEXT NOT NULL,
			orderly_secret TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (partner_id, account_id)
		)
	`)
	return err
}
