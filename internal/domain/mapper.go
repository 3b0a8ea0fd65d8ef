package domain

import (
	"time"

	"todo-sync/internal/remote"
	"todo-sync/internal/repository/sqlite"
)

// TaskMapper handles conversion between domain and cache Task models.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToDatabase converts a domain Task to a cache record.
func (m *TaskMapper) ToDatabase(domainTask Task) *sqlite.Task {
	dbTask := &sqlite.Task{
		ID:        domainTask.ID,
		Text:      domainTask.Text,
		Done:      domainTask.Done,
		CreatedAt: domainTask.CreatedAt,
	}
	if domainTask.RemoteID != "" {
		remoteID := domainTask.RemoteID
		dbTask.RemoteID = &remoteID
	}
	return dbTask
}

// FromDatabase converts a cache record to a domain Task.
func (m *TaskMapper) FromDatabase(dbTask *sqlite.Task) Task {
	task := Task{
		ID:        dbTask.ID,
		Text:      dbTask.Text,
		Done:      dbTask.Done,
		CreatedAt: dbTask.CreatedAt,
	}
	if dbTask.RemoteID != nil {
		task.RemoteID = *dbTask.RemoteID
	}
	return task
}

// ToDatabaseSlice converts a slice of domain Tasks to cache records.
func (m *TaskMapper) ToDatabaseSlice(domainTasks []Task) []*sqlite.Task {
	dbTasks := make([]*sqlite.Task, len(domainTasks))
	for i, task := range domainTasks {
		dbTasks[i] = m.ToDatabase(task)
	}
	return dbTasks
}

// FromDatabaseSlice converts a slice of cache records to domain Tasks.
func (m *TaskMapper) FromDatabaseSlice(dbTasks []*sqlite.Task) []Task {
	domainTasks := make([]Task, len(dbTasks))
	for i, task := range dbTasks {
		domainTasks[i] = m.FromDatabase(task)
	}
	return domainTasks
}

// RecordMapper handles conversion from remote records to domain Tasks.
type RecordMapper struct {
	now func() time.Time
}

// NewRecordMapper creates a new RecordMapper using now for records whose
// creation timestamp cannot be parsed.
func NewRecordMapper(now func() time.Time) *RecordMapper {
	if now == nil {
		now = time.Now
	}
	return &RecordMapper{now: now}
}

// FromRecord adopts a remote record as a new local task with a fresh ID.
func (m *RecordMapper) FromRecord(rec remote.Record) Task {
	createdAt, ok := rec.CreatedAt()
	if !ok {
		createdAt = m.now().UTC()
	}
	return Task{
		ID:        NewID(),
		RemoteID:  rec.Name,
		Text:      rec.Description,
		Done:      rec.Done(),
		CreatedAt: createdAt,
	}
}

// FromRecords adopts every record that has a name. A name seen twice is
// adopted once.
func (m *RecordMapper) FromRecords(records []remote.Record) []Task {
	seen := make(map[string]bool, len(records))
	tasks := make([]Task, 0, len(records))
	for _, rec := range records {
		if rec.Name == "" || seen[rec.Name] {
			continue
		}
		seen[rec.Name] = true
		tasks = append(tasks, m.FromRecord(rec))
	}
	return tasks
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Task   *TaskMapper
	Record *RecordMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers. now stamps
// adopted records whose creation time cannot be parsed; nil means time.Now.
func NewMapper(now func() time.Time) *Mapper {
	if now == nil {
		now = time.Now
	}
	return &Mapper{
		Task:   NewTaskMapper(),
		Record: NewRecordMapper(now),
	}
}
