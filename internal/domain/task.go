package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Task represents a to-do item in the domain model.
// This is a pure domain model without storage or wire concerns.
type Task struct {
	ID        string
	RemoteID  string
	Text      string
	Done      bool
	CreatedAt time.Time
}

// NewTask creates a local-only task with a fresh random ID.
func NewTask(text string, now time.Time) Task {
	return Task{
		ID:        NewID(),
		Text:      text,
		CreatedAt: now.UTC(),
	}
}

// NewID returns a random 128-bit identifier in canonical UUID form.
func NewID() string {
	return uuid.NewString()
}

// HasRemote reports whether the remote store has assigned an identifier.
func (t Task) HasRemote() bool {
	return t.RemoteID != ""
}

// Toggled returns a copy with the done flag flipped.
func (t Task) Toggled() Task {
	t.Done = !t.Done
	return t
}

// String returns the task text for display purposes.
func (t Task) String() string {
	return t.Text
}

// Remaining counts the tasks not yet done.
func Remaining(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Done {
			n++
		}
	}
	return n
}

// Active returns the tasks not yet done, in their original order.
func Active(tasks []Task) []Task {
	return filter(tasks, false)
}

// Completed returns the done tasks, in their original order.
func Completed(tasks []Task) []Task {
	return filter(tasks, true)
}

func filter(tasks []Task, done bool) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Done == done {
			out = append(out, t)
		}
	}
	return out
}

// SortNewestFirst orders tasks by creation time descending, ties by ID.
// This matches the order the cache returns records in.
func SortNewestFirst(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return newerThan(tasks[i], tasks[j])
	})
}

// InsertNewestFirst inserts task into a slice already in SortNewestFirst
// order, at the position the sort would give it
func InsertNewestFirst(tasks []Task, task Task) []Task {
	idx := sort.Search(len(tasks), func(i int) bool {
		return !newerThan(tasks[i], task)
	})
	out := make([]Task, 0, len(tasks)+1)
	out = append(out, tasks[:idx]...)
	out = append(out, task)
	return append(out, tasks[idx:]...)
}

// newerThan orders by CreatedAt descending, then ID ascending, matching the
// cache's ORDER BY
func newerThan(a, b Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}
