package sqlite

import (
	"database/sql"
	"fmt"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanTask scans a single task from a database row.
// Columns: id, text, done, created_at, remote_id.
func ScanTask(scanner Scanner) (*Task, error) {
	task := &Task{}
	var createdAt string
	var remoteID sql.NullString

	err := scanner.Scan(
		&task.ID,
		&task.Text,
		&task.Done,
		&createdAt,
		&remoteID,
	)
	if err != nil {
		return nil, err
	}

	task.CreatedAt, err = ParseTimeFromDB(createdAt)
	if err != nil {
		return nil, fmt.Errorf("task %s has malformed created_at %q: %w", task.ID, createdAt, err)
	}

	if remoteID.Valid && remoteID.String != "" {
		id := remoteID.String
		task.RemoteID = &id
	}

	return task, nil
}

// ScanTasks scans multiple tasks from database rows
func ScanTasks(rows Rows) ([]*Task, error) {
	var tasks []*Task
	for rows.Next() {
		task, err := ScanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}
