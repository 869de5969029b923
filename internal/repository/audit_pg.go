package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GoOrderly/orderlygate/internal/model"
	"github.com/jmoiron/sqlx"
)

type PostgresAuditRepo struct {
	db *sqlx.DB
}

func NewPostgresAuditRepo(db *sqlx.DB) *PostgresAuditRepo {
	repo := &PostgresAuditRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

// Insert is idempotent on record id so a retried flush never duplicates
// a row.
func (r *PostgresAuditRepo) Insert(ctx context.Context, rec *model.AuditRecord) error {
	if rec == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, partner_id, method, path, ip, user_agent,
			request_body, status_code, response_body, latency_ms, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.PartnerID, rec.Method, rec.Path, rec.IP, rec.UserAgent,
		rec.RequestBody, rec.StatusCode, rec.ResponseBody, rec.LatencyMs, rec.CreatedAt)
	return err
}

func (r *PostgresAuditRepo) List(ctx context.Context, partnerID int64, limit int, from, to *time.Time) ([]*model.AuditRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	query := `SELECT id, partner_id, method, path, ip, user_agent, request_body, status_code, response_body, latency_ms, created_at FROM audit_logs`
	clauses := []string{}
	args := []interface{}{}
	idx := 1

	if partnerID != 0 {
		clauses = append(clauses, fmt.Sprintf("partner_id = $%d", idx))
		args = append(args, partnerID)
		idx++
	}
	if from != nil {
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", idx))
		args = append(args, *from)
		idx++
	}
	if to != nil {
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", idx))
		args = append(args, *to)
		idx++
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", idx)
	args = append(args, limit)

	records := make([]*model.AuditRecord, 0, limit)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, err
	}
	return records, nil
}

// Cleanup drops records older than the retention window.
func (r *PostgresAuditRepo) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	_, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	return err
}

func (r *PostgresAuditRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			partner_id BIGINT,
			method TEXT,
			path TEXT,
			ip TEXT,
			user_agent TEXT,
			request_body TEXT,
			status_code INTEGER,
			response_body TEXT,
			latency_ms BIGINT,
			created_at TIMESTAMPTZ
		)
	`)
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_audit_logs_partner ON audit_logs(partner_id, created_at DESC)`)
	return nil
}
