package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"todo-sync/internal/config"
	"todo-sync/internal/domain"
)

// SyncEngine implements SyncService. The mutex guards the in-memory
// collection and is held across the cache write of a mutation, never across
// a remote call.
type SyncEngine struct {
	mu       sync.Mutex
	tasks    []domain.Task
	cache    TaskCache
	remote   RemoteClient
	mapper   *domain.Mapper
	strategy string
	logger   *slog.Logger
	now      func() time.Time

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// EngineOption configures a SyncEngine
type EngineOption func(*SyncEngine)

// WithLoadStrategy selects how Initialize reconciles cache and remote.
// Unknown values fall back to the cache strategy.
func WithLoadStrategy(strategy string) EngineOption {
	return func(e *SyncEngine) {
		e.strategy = strategy
	}
}

// WithLogger sets the logger remote failures are reported through
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *SyncEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for new tasks
func WithClock(now func() time.Time) EngineOption {
	return func(e *SyncEngine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewSyncEngine creates an engine over cache. Pass a nil client to run offline.
func NewSyncEngine(cache TaskCache, client RemoteClient, opts ...EngineOption) *SyncEngine {
	e := &SyncEngine{
		cache:     cache,
		remote:    client,
		strategy:  config.LoadStrategyCache,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.mapper = domain.NewMapper(e.now)
	e.logger = e.logger.With("component", "sync")
	return e
}

// Initialize loads the cache and reconciles it with the remote store.
// A remote failure is logged and leaves the cached collection in place;
// only cache failures are returned.
func (e *SyncEngine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	dbTasks, err := e.cache.GetAll(ctx)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.tasks = e.mapper.Task.FromDatabaseSlice(dbTasks)
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	if e.remote == nil {
		e.logger.Debug("initialized from cache, remote disabled", "tasks", len(snapshot))
		e.notify(snapshot)
		return nil
	}

	records, err := e.remote.List(ctx)
	if err != nil {
		e.logger.Warn("remote fetch failed, using cached tasks",
			"operation", "list",
			"cached", len(snapshot),
			"error", err)
		e.notify(snapshot)
		return nil
	}

	remoteTasks := e.mapper.Record.FromRecords(records)

	e.mu.Lock()
	if e.strategy == config.LoadStrategyRemote {
		err = e.replaceLocked(ctx, remoteTasks)
	} else {
		err = e.mergeLocked(ctx, remoteTasks)
	}
	if err != nil {
		e.mu.Unlock()
		return err
	}
	snapshot = e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Debug("initialized", "strategy", e.strategy, "tasks", len(snapshot), "remote_records", len(records))
	e.notify(snapshot)
	return nil
}

// mergeLocked adopts every remote task whose remote ID is not represented locally
func (e *SyncEngine) mergeLocked(ctx context.Context, remoteTasks []domain.Task) error {
	represented := make(map[string]bool, len(e.tasks))
	for _, t := range e.tasks {
		if t.HasRemote() {
			represented[t.RemoteID] = true
		}
	}

	var additions []domain.Task
	for _, t := range remoteTasks {
		if represented[t.RemoteID] {
			continue
		}
		represented[t.RemoteID] = true
		additions = append(additions, t)
	}
	if len(additions) == 0 {
		return nil
	}

	if err := e.cache.PutMany(ctx, e.mapper.Task.ToDatabaseSlice(additions)); err != nil {
		return err
	}

	merged := make([]domain.Task, 0, len(e.tasks)+len(additions))
	merged = append(merged, e.tasks...)
	merged = append(merged, additions...)
	domain.SortNewestFirst(merged)
	e.tasks = merged
	return nil
}

// replaceLocked makes the remote set the whole collection
func (e *SyncEngine) replaceLocked(ctx context.Context, remoteTasks []domain.Task) error {
	discarded := 0
	for _, t := range e.tasks {
		if !t.HasRemote() {
			discarded++
		}
	}

	if err := e.cache.ReplaceAll(ctx, e.mapper.Task.ToDatabaseSlice(remoteTasks)); err != nil {
		return err
	}
	if discarded > 0 {
		e.logger.Warn("remote load strategy discarded unsynced local tasks", "discarded", discarded)
	}

	fresh := append([]domain.Task(nil), remoteTasks...)
	domain.SortNewestFirst(fresh)
	e.tasks = fresh
	return nil
}

// Add creates a local-only task, placed in newest-first order so memory and
// cache agree even when adopted remote tasks carry later timestamps. The
// remote copy is created by the next SyncAll.
func (e *SyncEngine) Add(ctx context.Context, text string) (domain.Task, error) {
	task := domain.NewTask(text, e.now())

	e.mu.Lock()
	if err := e.cache.Put(ctx, e.mapper.Task.ToDatabase(task)); err != nil {
		e.mu.Unlock()
		return domain.Task{}, err
	}
	e.tasks = domain.InsertNewestFirst(e.tasks, task)
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Debug("task added", "task_id", task.ID)
	e.notify(snapshot)
	return task, nil
}

// Toggle flips the done flag of the task with id. Unknown ids are a no-op.
func (e *SyncEngine) Toggle(ctx context.Context, id string) error {
	return e.update(ctx, "toggle", id, func(t domain.Task) domain.Task {
		return t.Toggled()
	})
}

// Edit replaces the text of the task with id. Unknown ids are a no-op.
func (e *SyncEngine) Edit(ctx context.Context, id string, text string) error {
	return e.update(ctx, "edit", id, func(t domain.Task) domain.Task {
		t.Text = text
		return t
	})
}

func (e *SyncEngine) update(ctx context.Context, operation, id string, change func(domain.Task) domain.Task) error {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return nil
	}

	updated := change(e.tasks[idx])
	if err := e.cache.Put(ctx, e.mapper.Task.ToDatabase(updated)); err != nil {
		e.mu.Unlock()
		return err
	}
	e.tasks[idx] = updated
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snapshot)

	if updated.HasRemote() {
		e.propagate(ctx, operation, updated, func(ctx context.Context) error {
			return e.remote.Update(ctx, updated.RemoteID, updated.Text, updated.Done)
		})
	}
	return nil
}

// Delete removes the task with id. Unknown ids are a no-op.
func (e *SyncEngine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return nil
	}

	removed := e.tasks[idx]
	if err := e.cache.Delete(ctx, id); err != nil {
		e.mu.Unlock()
		return err
	}
	next := make([]domain.Task, 0, len(e.tasks)-1)
	next = append(next, e.tasks[:idx]...)
	next = append(next, e.tasks[idx+1:]...)
	e.tasks = next
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snapshot)
	e.deleteRemote(ctx, []domain.Task{removed})
	return nil
}

// ClearCompleted removes every done task, keeping the rest in order
func (e *SyncEngine) ClearCompleted(ctx context.Context) error {
	e.mu.Lock()
	kept := domain.Active(e.tasks)
	removed := domain.Completed(e.tasks)
	if len(removed) == 0 {
		e.mu.Unlock()
		return nil
	}

	ids := make([]string, len(removed))
	for i, t := range removed {
		ids[i] = t.ID
	}
	if err := e.cache.DeleteMany(ctx, ids); err != nil {
		e.mu.Unlock()
		return err
	}
	e.tasks = kept
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snapshot)
	e.deleteRemote(ctx, removed)
	return nil
}

// ClearAll removes every task
func (e *SyncEngine) ClearAll(ctx context.Context) error {
	e.mu.Lock()
	if err := e.cache.Clear(ctx); err != nil {
		e.mu.Unlock()
		return err
	}
	removed := e.tasks
	e.tasks = []domain.Task{}
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snapshot)
	e.deleteRemote(ctx, removed)
	return nil
}

// deleteRemote issues one independent remote delete per synced task
func (e *SyncEngine) deleteRemote(ctx context.Context, tasks []domain.Task) {
	for _, t := range tasks {
		if !t.HasRemote() {
			continue
		}
		t := t
		e.propagate(ctx, "delete", t, func(ctx context.Context) error {
			return e.remote.Delete(ctx, t.RemoteID)
		})
	}
}

// SyncAll pushes every task to the remote store: tasks without a remote ID
// are created, the rest are updated. Failures are counted and logged, never
// returned. Newly assigned remote IDs are then written to the cache.
func (e *SyncEngine) SyncAll(ctx context.Context) (*SyncReport, error) {
	tasks := e.Tasks()
	report := &SyncReport{Total: len(tasks)}
	if e.remote == nil {
		report.Offline = true
		return report, nil
	}

	assigned := make(map[string]string)
	for _, t := range tasks {
		if !t.HasRemote() {
			remoteID, err := e.remote.Create(ctx, t.Text, t.Done)
			if err != nil {
				e.recordFailure(report, "create", t, err)
				continue
			}
			assigned[t.ID] = remoteID
			report.Created++
			continue
		}

		if err := e.remote.Update(ctx, t.RemoteID, t.Text, t.Done); err != nil {
			e.recordFailure(report, "update", t, err)
			continue
		}
		report.Updated++
	}

	e.mu.Lock()
	next := make([]domain.Task, len(e.tasks))
	copy(next, e.tasks)
	for i := range next {
		if remoteID, ok := assigned[next[i].ID]; ok && !next[i].HasRemote() {
			next[i].RemoteID = remoteID
		}
	}
	if err := e.cache.PutMany(ctx, e.mapper.Task.ToDatabaseSlice(next)); err != nil {
		e.mu.Unlock()
		e.logger.Error("sync could not persist remote ids", "assigned", len(assigned), "error", err)
		return nil, err
	}
	e.tasks = next
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Info("sync completed",
		"total", report.Total,
		"created", report.Created,
		"updated", report.Updated,
		"failed", report.Failed)
	e.notify(snapshot)
	return report, nil
}

func (e *SyncEngine) recordFailure(report *SyncReport, operation string, t domain.Task, err error) {
	report.Failed++
	report.Failures = append(report.Failures, SyncFailure{
		TaskID:    t.ID,
		RemoteID:  t.RemoteID,
		Operation: operation,
		Err:       err,
	})
	e.logFailure(operation, t, err)
}

// propagate runs a best-effort remote call after the local change committed.
// The outcome is only visible in the log.
func (e *SyncEngine) propagate(ctx context.Context, operation string, t domain.Task, call func(ctx context.Context) error) {
	if e.remote == nil {
		return
	}
	if err := call(ctx); err != nil {
		e.logFailure(operation, t, err)
	}
}

func (e *SyncEngine) logFailure(operation string, t domain.Task, err error) {
	e.logger.Warn("remote propagation failed",
		"operation", operation,
		"task_id", t.ID,
		"remote_id", t.RemoteID,
		"error", err)
}

// Tasks returns a copy of the collection, newest first
func (e *SyncEngine) Tasks() []domain.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Get returns the task with id
func (e *SyncEngine) Get(id string) (domain.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.indexLocked(id)
	if idx < 0 {
		return domain.Task{}, false
	}
	return e.tasks[idx], true
}

// Remaining counts tasks not yet done
func (e *SyncEngine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.Remaining(e.tasks)
}

// Active returns tasks not yet done
func (e *SyncEngine) Active() []domain.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.Active(e.tasks)
}

// Completed returns done tasks
func (e *SyncEngine) Completed() []domain.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.Completed(e.tasks)
}

// Subscribe registers listener for change notifications
func (e *SyncEngine) Subscribe(listener Listener) func() {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()

	id := e.nextListener
	e.nextListener++
	e.listeners[id] = listener

	return func() {
		e.listenersMu.Lock()
		defer e.listenersMu.Unlock()
		delete(e.listeners, id)
	}
}

func (e *SyncEngine) notify(snapshot []domain.Task) {
	e.listenersMu.Lock()
	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.listenersMu.Unlock()

	for _, l := range listeners {
		l(append([]domain.Task(nil), snapshot...))
	}
}

func (e *SyncEngine) snapshotLocked() []domain.Task {
	out := make([]domain.Task, len(e.tasks))
	copy(out, e.tasks)
	return out
}

func (e *SyncEngine) indexLocked(id string) int {
	for i, t := range e.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

var _ SyncService = (*SyncEngine)(nil)
