package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sync/internal/errors"
)

func newMockRepository(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func TestHandleNoRowsError(t *testing.T) {
	err := HandleNoRowsError(sql.ErrNoRows, "task", "a1")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	other := stderrors.New("disk on fire")
	assert.Equal(t, other, HandleNoRowsError(other, "task", "a1"))
}

func TestStorageFailures(t *testing.T) {
	diskErr := stderrors.New("disk I/O error")

	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
		call   func(repo *SQLiteRepository) error
	}{
		{
			name: "put",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO tasks").WillReturnError(diskErr)
			},
			call: func(repo *SQLiteRepository) error {
				return repo.Put(context.Background(), &Task{ID: "a1", Text: "x", CreatedAt: at(0)})
			},
		},
		{
			name: "put many rolls back",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectPrepare("INSERT INTO tasks")
				mock.ExpectExec("INSERT INTO tasks").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO tasks").WillReturnError(diskErr)
				mock.ExpectRollback()
			},
			call: func(repo *SQLiteRepository) error {
				return repo.PutMany(context.Background(), []*Task{
					{ID: "a1", Text: "one", CreatedAt: at(0)},
					{ID: "a2", Text: "two", CreatedAt: at(1)},
				})
			},
		},
		{
			name: "get all query",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, text, done, created_at, remote_id FROM tasks").WillReturnError(diskErr)
			},
			call: func(repo *SQLiteRepository) error {
				_, err := repo.GetAll(context.Background())
				return err
			},
		},
		{
			name: "get all malformed row",
			expect: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "text", "done", "created_at", "remote_id"}).
					AddRow("a1", "x", false, "yesterday", nil)
				mock.ExpectQuery("SELECT id, text, done, created_at, remote_id FROM tasks").WillReturnRows(rows)
			},
			call: func(repo *SQLiteRepository) error {
				_, err := repo.GetAll(context.Background())
				return err
			},
		},
		{
			name: "get",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, text, done, created_at, remote_id FROM tasks WHERE id").
					WithArgs("a1").WillReturnError(diskErr)
			},
			call: func(repo *SQLiteRepository) error {
				_, err := repo.Get(context.Background(), "a1")
				return err
			},
		},
		{
			name: "delete",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM tasks WHERE id").WithArgs("a1").WillReturnError(diskErr)
			},
			call: func(repo *SQLiteRepository) error {
				return repo.Delete(context.Background(), "a1")
			},
		},
		{
			name: "delete many rolls back",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectPrepare("DELETE FROM tasks WHERE id")
				mock.ExpectExec("DELETE FROM tasks WHERE id").WithArgs("a1").WillReturnError(diskErr)
				mock.ExpectRollback()
			},
			call: func(repo *SQLiteRepository) error {
				return repo.DeleteMany(context.Background(), []string{"a1", "a2"})
			},
		},
		{
			name: "replace all commit",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM tasks").WillReturnResult(sqlmock.NewResult(0, 3))
				mock.ExpectCommit().WillReturnError(diskErr)
			},
			call: func(repo *SQLiteRepository) error {
				return repo.ReplaceAll(context.Background(), nil)
			},
		},
		{
			name: "clear",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM tasks").WillReturnError(diskErr)
			},
			call: func(repo *SQLiteRepository) error {
				return repo.Clear(context.Background())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.expect(mock)

			err := tt.call(repo)

			require.Error(t, err)
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStorage), "expected storage error, got %v", err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetScansRow(t *testing.T) {
	repo, mock := newMockRepository(t)
	rows := sqlmock.NewRows([]string{"id", "text", "done", "created_at", "remote_id"}).
		AddRow("a1", "buy milk", true, FormatTimeForDB(at(3)), "R1")
	mock.ExpectQuery("SELECT id, text, done, created_at, remote_id FROM tasks WHERE id").
		WithArgs("a1").WillReturnRows(rows)

	task, err := repo.Get(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Text)
	assert.True(t, task.Done)
	assert.Equal(t, "R1", *task.RemoteID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
