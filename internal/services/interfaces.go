package services

import (
	"context"

	"todo-sync/internal/domain"
	"todo-sync/internal/remote"
	"todo-sync/internal/repository/sqlite"
)

// TaskCache is the durable local store the engine writes through to
type TaskCache interface {
	Put(ctx context.Context, task *sqlite.Task) error
	PutMany(ctx context.Context, tasks []*sqlite.Task) error
	ReplaceAll(ctx context.Context, tasks []*sqlite.Task) error
	GetAll(ctx context.Context) ([]*sqlite.Task, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	Clear(ctx context.Context) error
}

// RemoteClient is the authoritative remote store. A nil RemoteClient means
// the engine runs offline.
type RemoteClient interface {
	List(ctx context.Context) ([]remote.Record, error)
	Create(ctx context.Context, text string, done bool) (string, error)
	Update(ctx context.Context, remoteID string, text string, done bool) error
	Delete(ctx context.Context, remoteID string) error
}

// SyncFailure describes one task whose remote propagation failed during a sync pass
type SyncFailure struct {
	TaskID    string `json:"task_id"`
	RemoteID  string `json:"remote_id,omitempty"`
	Operation string `json:"operation"`
	Err       error  `json:"-"`
}

// SyncReport is the aggregate outcome of a sync pass
type SyncReport struct {
	Total    int           `json:"total"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Failed   int           `json:"failed"`
	Failures []SyncFailure `json:"failures,omitempty"`
	Offline  bool          `json:"offline"`
}

// Listener receives a snapshot of the task collection after every committed change
type Listener func(tasks []domain.Task)

// SyncService owns the task collection and keeps it consistent with the
// local cache and the remote store
type SyncService interface {
	// Loading
	Initialize(ctx context.Context) error

	// Mutations
	Add(ctx context.Context, text string) (domain.Task, error)
	Toggle(ctx context.Context, id string) error
	Edit(ctx context.Context, id string, text string) error
	Delete(ctx context.Context, id string) error
	ClearCompleted(ctx context.Context) error
	ClearAll(ctx context.Context) error
	SyncAll(ctx context.Context) (*SyncReport, error)

	// Derived views
	Tasks() []domain.Task
	Get(id string) (domain.Task, bool)
	Remaining() int
	Active() []domain.Task
	Completed() []domain.Task

	// Change notification
	Subscribe(listener Listener) (unsubscribe func())
}
