package sqlite

import (
	"context"
	"database/sql"
	"time"

	"todo-sync/internal/errors"
	"todo-sync/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the interface for cache operations
type Repository interface {
	// Write operations
	Put(ctx context.Context, task *Task) error
	PutMany(ctx context.Context, tasks []*Task) error
	ReplaceAll(ctx context.Context, tasks []*Task) error

	// Read operations
	GetAll(ctx context.Context) ([]*Task, error)
	Get(ctx context.Context, id string) (*Task, error)

	// Delete operations
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	Clear(ctx context.Context) error

	// Utility
	SchemaVersion(ctx context.Context) (int64, error)
	Close() error
}

const (
	upsertTaskQuery = `
	INSERT INTO tasks (id, text, done, created_at, remote_id)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		text = excluded.text,
		done = excluded.done,
		created_at = excluded.created_at,
		remote_id = excluded.remote_id`

	selectTaskColumns = `SELECT id, text, done, created_at, remote_id FROM tasks`
)

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStorageError("open database", err)
	}

	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	if err := migrations.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, errors.NewStorageError("run migrations", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an already opened and migrated database
func NewWithDB(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// SchemaVersion reports the migration version applied to the cache
func (r *SQLiteRepository) SchemaVersion(ctx context.Context) (int64, error) {
	version, err := migrations.Version(ctx, r.db)
	if err != nil {
		return 0, HandleStorageError("read schema version", err)
	}
	return version, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// sanitize fills in what a stored record cannot be without
func (r *SQLiteRepository) sanitize(task *Task) (*Task, error) {
	if task == nil || task.ID == "" {
		return nil, errors.NewInvalidInputError("id", "", "task id is required")
	}
	clean := *task
	if clean.CreatedAt.IsZero() {
		clean.CreatedAt = r.now()
	}
	return &clean, nil
}

func upsertArgs(task *Task) []interface{} {
	return []interface{}{
		task.ID,
		task.Text,
		task.Done,
		FormatTimeForDB(task.CreatedAt),
		FormatRemoteIDForDB(task.RemoteID),
	}
}

// Put inserts the task or replaces the stored record with the same id
func (r *SQLiteRepository) Put(ctx context.Context, task *Task) error {
	clean, err := r.sanitize(task)
	if err != nil {
		return err
	}
	return Execute(ctx, r.db, "put task", upsertTaskQuery, upsertArgs(clean)...)
}

// PutMany upserts every task in a single transaction
func (r *SQLiteRepository) PutMany(ctx context.Context, tasks []*Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.writeTasks(ctx, "put many", false, tasks)
}

// ReplaceAll discards every cached task and stores tasks in their place.
// Either the whole replacement is applied or none of it.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, tasks []*Task) error {
	return r.writeTasks(ctx, "replace all", true, tasks)
}

func (r *SQLiteRepository) writeTasks(ctx context.Context, operation string, clearFirst bool, tasks []*Task) error {
	clean := make([]*Task, 0, len(tasks))
	for _, task := range tasks {
		c, err := r.sanitize(task)
		if err != nil {
			return err
		}
		clean = append(clean, c)
	}

	return r.withTx(ctx, operation, func(tx *sql.Tx) error {
		if clearFirst {
			if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
				return err
			}
		}
		if len(clean) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, upsertTaskQuery)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, task := range clean {
			if _, err := stmt.ExecContext(ctx, upsertArgs(task)...); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) withTx(ctx context.Context, operation string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return HandleStorageError("begin "+operation, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return HandleStorageError(operation, err)
	}

	if err := tx.Commit(); err != nil {
		return HandleStorageError("commit "+operation, err)
	}
	return nil
}

// GetAll returns every cached task, newest first
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*Task, error) {
	query := selectTaskColumns + ` ORDER BY created_at DESC, id ASC`
	return QueryMultiple(ctx, r.db, query, ScanTasks, "tasks")
}

// Get retrieves a task by id
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Task, error) {
	query := selectTaskColumns + ` WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanTask, "task", id, id)
}

// Delete removes the task with the given id. Deleting an unknown id is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	return Execute(ctx, r.db, "delete task", `DELETE FROM tasks WHERE id = ?`, id)
}

// DeleteMany removes the given tasks in a single transaction
func (r *SQLiteRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.withTx(ctx, "delete many", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `DELETE FROM tasks WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, id := range ids {
			if _, err := stmt.ExecContext(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear removes every cached task
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	return Execute(ctx, r.db, "clear tasks", `DELETE FROM tasks`)
}
