package kv

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='kv'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_SetManyRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.MatchExpectationsInOrder(false)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO kv`).WithArgs("authToken", "tok").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO kv`).WithArgs("user", `{"id":"1"}`).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	s := NewSQLiteStore(db)
	err = s.SetMany(context.Background(), map[string]string{"authToken": "tok", "user": `{"id":"1"}`})
	require.Error(t, err)
}

func TestSQLiteStore_GetWrapsQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("no such table: kv")
	mock.ExpectQuery(`SELECT value FROM kv WHERE key = \?`).WithArgs("tasks").WillReturnError(boom)

	_, ok, err := NewSQLiteStore(db).Get(context.Background(), "tasks")
	require.ErrorIs(t, err, boom)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "kv[tasks]")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_RemoveWrapsExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("readonly database")
	mock.ExpectExec(`DELETE FROM kv WHERE key = \?`).WithArgs("user").WillReturnError(boom)

	err = NewSQLiteStore(db).Remove(context.Background(), "user")
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
