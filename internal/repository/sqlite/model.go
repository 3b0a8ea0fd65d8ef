package sqlite

import "time"

// Task is one cached task record, keyed by its local ID.
// RemoteID is nil until the remote service has assigned one.
type Task struct {
	ID        string
	Text      string
	Done      bool
	CreatedAt time.Time
	RemoteID  *string
}
