package api

import (
	"strings"
	"time"

	"todo-sync/internal/domain"
	"todo-sync/internal/errors"
)

// ShortIDLength is how many characters of a task ID are shown and usually
// enough to address it
const ShortIDLength = 8

// Filter selects which tasks List returns
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter validates a filter name. The empty string means all.
func ParseFilter(name string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(name))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", errors.NewInvalidInputError("filter", name, "must be one of all, active, completed")
	}
}

// TaskView is a task as presented to callers
type TaskView struct {
	ID        string    `json:"id"`
	ShortID   string    `json:"short_id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	Synced    bool      `json:"synced"`
	RemoteID  string    `json:"remote_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskList is a filtered listing plus the count of tasks still to do
type TaskList struct {
	Tasks     []TaskView `json:"tasks"`
	Remaining int        `json:"remaining"`
	Total     int        `json:"total"`
}

// ToView converts a domain task for presentation
func ToView(t domain.Task) TaskView {
	return TaskView{
		ID:        t.ID,
		ShortID:   ShortID(t.ID),
		Text:      t.Text,
		Done:      t.Done,
		Synced:    t.HasRemote(),
		RemoteID:  t.RemoteID,
		CreatedAt: t.CreatedAt,
	}
}

// ShortID truncates id for display
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// resolveID finds the one task whose ID equals or starts with prefix
func resolveID(tasks []domain.Task, prefix string) (domain.Task, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return domain.Task{}, errors.NewInvalidInputError("id", prefix, "task id is required")
	}

	var matches []domain.Task
	for _, t := range tasks {
		if t.ID == prefix {
			return t, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return domain.Task{}, errors.NewNotFoundError("task", prefix)
	case 1:
		return matches[0], nil
	default:
		return domain.Task{}, errors.NewInvalidInputError("id", prefix, "ambiguous id prefix, matches more than one task")
	}
}
