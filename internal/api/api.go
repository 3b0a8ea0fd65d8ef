package api

import (
	"context"

	"todo-sync/internal/domain"
	"todo-sync/internal/services"
)

// API is the caller-facing surface over the sync engine. It is the only
// way the presentation layer changes tasks.
type API interface {
	// ========== Loading ==========

	// Initialize loads tasks from the cache and reconciles with the remote
	Initialize(ctx context.Context) error

	// ========== Task Workflows ==========

	// Add creates a local task; it reaches the remote on the next Sync
	Add(ctx context.Context, text string) (*TaskView, error)

	// Toggle flips the done flag of the task addressed by id or id prefix
	Toggle(ctx context.Context, id string) (*TaskView, error)

	// Edit replaces the text of a task
	Edit(ctx context.Context, id string, text string) (*TaskView, error)

	// Delete removes a task and returns what was removed
	Delete(ctx context.Context, id string) (*TaskView, error)

	// ClearCompleted removes every done task and returns how many went
	ClearCompleted(ctx context.Context) (int, error)

	// ClearAll removes every task and returns how many went
	ClearAll(ctx context.Context) (int, error)

	// ========== Sync ==========

	// Sync pushes every task to the remote store
	Sync(ctx context.Context) (*services.SyncReport, error)

	// ========== Queries ==========

	// List returns the tasks matching filter, newest first
	List(ctx context.Context, filter Filter) (*TaskList, error)

	// Get returns one task
	Get(ctx context.Context, id string) (*TaskView, error)
}

type apiImpl struct {
	engine services.SyncService
}

// New creates a new API instance.
func New(engine services.SyncService) API {
	return &apiImpl{engine: engine}
}

func (a *apiImpl) Initialize(ctx context.Context) error {
	return a.engine.Initialize(ctx)
}

func (a *apiImpl) Add(ctx context.Context, text string) (*TaskView, error) {
	task, err := a.engine.Add(ctx, text)
	if err != nil {
		return nil, err
	}
	view := ToView(task)
	return &view, nil
}

func (a *apiImpl) Toggle(ctx context.Context, id string) (*TaskView, error) {
	task, err := resolveID(a.engine.Tasks(), id)
	if err != nil {
		return nil, err
	}
	if err := a.engine.Toggle(ctx, task.ID); err != nil {
		return nil, err
	}
	return a.current(task), nil
}

func (a *apiImpl) Edit(ctx context.Context, id string, text string) (*TaskView, error) {
	task, err := resolveID(a.engine.Tasks(), id)
	if err != nil {
		return nil, err
	}
	if err := a.engine.Edit(ctx, task.ID, text); err != nil {
		return nil, err
	}
	return a.current(task), nil
}

func (a *apiImpl) Delete(ctx context.Context, id string) (*TaskView, error) {
	task, err := resolveID(a.engine.Tasks(), id)
	if err != nil {
		return nil, err
	}
	if err := a.engine.Delete(ctx, task.ID); err != nil {
		return nil, err
	}
	view := ToView(task)
	return &view, nil
}

func (a *apiImpl) ClearCompleted(ctx context.Context) (int, error) {
	count := len(a.engine.Completed())
	if err := a.engine.ClearCompleted(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

func (a *apiImpl) ClearAll(ctx context.Context) (int, error) {
	count := len(a.engine.Tasks())
	if err := a.engine.ClearAll(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

func (a *apiImpl) Sync(ctx context.Context) (*services.SyncReport, error) {
	return a.engine.SyncAll(ctx)
}

func (a *apiImpl) List(ctx context.Context, filter Filter) (*TaskList, error) {
	filter, err := ParseFilter(string(filter))
	if err != nil {
		return nil, err
	}

	var tasks []domain.Task
	switch filter {
	case FilterActive:
		tasks = a.engine.Active()
	case FilterCompleted:
		tasks = a.engine.Completed()
	default:
		tasks = a.engine.Tasks()
	}

	list := &TaskList{
		Tasks:     make([]TaskView, 0, len(tasks)),
		Remaining: a.engine.Remaining(),
		Total:     len(a.engine.Tasks()),
	}
	for _, t := range tasks {
		list.Tasks = append(list.Tasks, ToView(t))
	}
	return list, nil
}

func (a *apiImpl) Get(ctx context.Context, id string) (*TaskView, error) {
	task, err := resolveID(a.engine.Tasks(), id)
	if err != nil {
		return nil, err
	}
	view := ToView(task)
	return &view, nil
}

// current re-reads a task after a mutation, falling back to the pre-mutation copy
func (a *apiImpl) current(task domain.Task) *TaskView {
	if fresh, ok := a.engine.Get(task.ID); ok {
		task = fresh
	}
	view := ToView(task)
	return &view
}
