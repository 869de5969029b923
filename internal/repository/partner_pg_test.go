package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var partnerColumns = []string{"id", "name", "api_key_hash", "key_prefix", "created_at", "updated_at"}

func TestPartnerSave(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PostgresPartnerRepo{db: db}

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO partners`).
		WithArgs("acme", "$2a$10$hash", "og_deadbeef").
		WillReturnRows(sqlmock.NewRows(partnerColumns).
			AddRow(1, "acme", "$2a$10$hash", "og_deadbeef", now, now))

	p, err := repo.Save(context.Background(), "acme", "$2a$10$hash", "og_deadbeef")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "og_deadbeef", p.KeyPrefix)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPartnerSaveDuplicateName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PostgresPartnerRepo{db: db}

	mock.ExpectQuery(`INSERT INTO partners`).
		WithArgs("acme", "hash", "og_deadbeef").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	_, err := repo.Save(context.Background(), "acme", "hash", "og_deadbeef")
	assert.ErrorIs(t, err, ErrDuplicatePartnerName)
}

func TestPartnerGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PostgresPartnerRepo{db: db}

	mock.ExpectQuery(`SELECT (.+) FROM partners WHERE id`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(partnerColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrPartnerNotFound)
}

func TestPartnerListByKeyPrefix(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PostgresPartnerRepo{db: db}

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM partners WHERE key_prefix`).
		WithArgs("og_deadbeef").
		WillReturnRows(sqlmock.NewRows(partnerColumns).
			AddRow(1, "acme", "hash", "og_deadbeef", now, now))

	partners, err := repo.ListByKeyPrefix(context.Background(), "og_deadbeef")
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, "acme", partners[0].Name)
}

func TestPartnerListByKeyPrefixEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PostgresPartnerRepo{db: db}

	mock.ExpectQuery(`SELECT (.+) FROM partners WHERE key_prefix`).
		WithArgs("og_nomatch").
		WillReturnRows(sqlmock.NewRows(partnerColumns))

	partners, err := repo.ListByKeyPrefix(context.Background(), "og_nomatch")
	require.NoError(t, err)
	assert.Empty(t, partners)
}

func TestPartnerDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PostgresPartnerRepo{db: db}

	mock.ExpectExec(`DELETE FROM partners`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 1))
}

func TestPartnerDeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PostgresPartnerRepo{db: db}

	mock.ExpectExec(`DELETE FROM partners`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 99), ErrPartnerNotFound)
}
