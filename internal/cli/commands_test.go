package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"todo-sync/internal/api"
	"todo-sync/internal/config"
	apperrors "todo-sync/internal/errors"
	"todo-sync/internal/services"
)

const sampleID = "3f2a9c1e-0000-4000-8000-000000000001"

func setupTestApp(t *testing.T) (*App, *mockAPI, *bytes.Buffer) {
	t.Helper()
	m := &mockAPI{}
	t.Cleanup(func() { m.AssertExpectations(t) })
	out := &bytes.Buffer{}
	return NewApp(m, config.NewConfig(), out), m, out
}

func sampleView(text string, done bool) *api.TaskView {
	return &api.TaskView{
		ID:        sampleID,
		ShortID:   api.ShortID(sampleID),
		Text:      text,
		Done:      done,
		CreatedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestAddCommand(t *testing.T) {
	app, m, out := setupTestApp(t)
	m.On("Add", mock.Anything, "buy oat milk").Return(sampleView("buy oat milk", false), nil)

	err := NewAddCommand(app).Execute(context.Background(), []string{"buy", "oat", "milk"})

	require.NoError(t, err)
	assert.Equal(t, "Added task 3f2a9c1e: buy oat milk\n", out.String())
}

func TestAddCommand_NoArgs(t *testing.T) {
	app, _, _ := setupTestApp(t)

	err := NewAddCommand(app).Execute(context.Background(), nil)

	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
}

func TestAddCommand_StorageError(t *testing.T) {
	app, m, out := setupTestApp(t)
	m.On("Add", mock.Anything, "x").Return(nil, apperrors.NewStorageError("put task", errors.New("disk full")))

	err := NewAddCommand(app).Execute(context.Background(), []string{"x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add task")
	assert.Contains(t, err.Error(), "local task cache")
	assert.Empty(t, out.String())
}

func TestToggleCommand(t *testing.T) {
	tests := []struct {
		name     string
		done     bool
		expected string
	}{
		{"marks done", true, "Marked 3f2a9c1e as done: walk dog\n"},
		{"marks not done", false, "Marked 3f2a9c1e as not done: walk dog\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, m, out := setupTestApp(t)
			m.On("Toggle", mock.Anything, "3f2a").Return(sampleView("walk dog", tt.done), nil)

			require.NoError(t, NewToggleCommand(app).Execute(context.Background(), []string{"3f2a"}))
			assert.Equal(t, tt.expected, out.String())
		})
	}
}

func TestToggleCommand_NotFound(t *testing.T) {
	app, m, _ := setupTestApp(t)
	m.On("Toggle", mock.Anything, "zz").Return(nil, apperrors.NewNotFoundError("task", "zz"))

	err := NewToggleCommand(app).Execute(context.Background(), []string{"zz"})

	assert.EqualError(t, err, "failed to toggle task: task not found: zz")
}

func TestEditCommand(t *testing.T) {
	app, m, out := setupTestApp(t)
	m.On("Edit", mock.Anything, "3f2a", "buy bread").Return(sampleView("buy bread", false), nil)

	err := NewEditCommand(app).Execute(context.Background(), []string{"3f2a", "buy", "bread"})

	require.NoError(t, err)
	assert.Equal(t, "Updated task 3f2a9c1e: buy bread\n", out.String())
}

func TestEditCommand_MissingText(t *testing.T) {
	app, _, _ := setupTestApp(t)

	err := NewEditCommand(app).Execute(context.Background(), []string{"3f2a"})

	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
}

func TestDeleteCommand(t *testing.T) {
	app, m, out := setupTestApp(t)
	m.On("Delete", mock.Anything, "3f2a").Return(sampleView("buy milk", true), nil)

	require.NoError(t, NewDeleteCommand(app).Execute(context.Background(), []string{"3f2a"}))
	assert.Equal(t, "Deleted task 3f2a9c1e: buy milk\n", out.String())
}

func TestDeleteCommand_AmbiguousPrefix(t *testing.T) {
	app, m, _ := setupTestApp(t)
	m.On("Delete", mock.Anything, "3").
		Return(nil, apperrors.NewInvalidInputError("id", "3", "ambiguous id prefix, matches more than one task"))

	err := NewDeleteCommand(app).Execute(context.Background(), []string{"3"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous id prefix")
}

func TestShowCommand(t *testing.T) {
	app, m, out := setupTestApp(t)
	view := sampleView("buy milk", true)
	view.Synced = true
	view.RemoteID = "TODO-00001"
	m.On("Get", mock.Anything, "3f2a").Return(view, nil)

	require.NoError(t, NewShowCommand(app).Execute(context.Background(), []string{"3f2a"}))

	output := out.String()
	assert.Contains(t, output, sampleID)
	assert.Contains(t, output, "buy milk")
	assert.Contains(t, output, "done")
	assert.Contains(t, output, "TODO-00001")
}

func TestListCommand(t *testing.T) {
	app, m, out := setupTestApp(t)
	newer := sampleView("buy milk", false)
	older := sampleView("walk dog", true)
	older.ID = "00000000-aaaa-4000-8000-000000000002"
	older.ShortID = "00000000"
	older.Synced = true
	m.On("List", mock.Anything, api.FilterAll).Return(&api.TaskList{
		Tasks:     []api.TaskView{*newer, *older},
		Remaining: 1,
		Total:     2,
	}, nil)

	require.NoError(t, NewListCommand(app).Execute(context.Background(), nil))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "3f2a9c1e")
	assert.Contains(t, lines[1], "open")
	assert.Contains(t, lines[1], "buy milk")
	assert.Contains(t, lines[2], "done")
	assert.Contains(t, lines[2], "yes")
	assert.Contains(t, lines[2], "walk dog")
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "1 item left", lines[4])
}

func TestListCommand_Filters(t *testing.T) {
	tests := []struct {
		arg      string
		expected api.Filter
	}{
		{"", api.FilterAll},
		{"active", api.FilterActive},
		{"Completed", api.FilterCompleted},
	}

	for _, tt := range tests {
		t.Run("filter "+tt.arg, func(t *testing.T) {
			app, m, out := setupTestApp(t)
			m.On("List", mock.Anything, tt.expected).Return(&api.TaskList{Tasks: []api.TaskView{}}, nil)

			require.NoError(t, NewListCommand(app).Execute(context.Background(), []string{tt.arg}))
			assert.Equal(t, "No tasks found\n", out.String())
		})
	}
}

func TestListCommand_InvalidFilter(t *testing.T) {
	app, _, _ := setupTestApp(t)

	err := NewListCommand(app).Execute(context.Background(), []string{"someday"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input for filter")
}

func TestClearCompletedCommand(t *testing.T) {
	app, m, out := setupTestApp(t)
	m.On("ClearCompleted", mock.Anything).Return(1, nil)

	require.NoError(t, NewClearCompletedCommand(app).Execute(context.Background(), nil))
	assert.Equal(t, "Cleared 1 completed task\n", out.String())
}

func TestClearAllCommand(t *testing.T) {
	t.Run("skips prompt with yes", func(t *testing.T) {
		app, m, out := setupTestApp(t)
		m.On("ClearAll", mock.Anything).Return(3, nil)

		require.NoError(t, NewClearAllCommand(app, true).Execute(context.Background(), nil))
		assert.Equal(t, "Cleared 3 tasks\n", out.String())
	})

	t.Run("confirmed", func(t *testing.T) {
		app, m, out := setupTestApp(t)
		app.WithInput(strings.NewReader("y\n"))
		m.On("List", mock.Anything, api.FilterAll).Return(&api.TaskList{Total: 2}, nil)
		m.On("ClearAll", mock.Anything).Return(2, nil)

		require.NoError(t, NewClearAllCommand(app, false).Execute(context.Background(), nil))
		assert.Contains(t, out.String(), "Delete all 2 tasks? [y/N]: ")
		assert.Contains(t, out.String(), "Cleared 2 tasks\n")
	})

	t.Run("declined", func(t *testing.T) {
		app, m, out := setupTestApp(t)
		app.WithInput(strings.NewReader("\n"))
		m.On("List", mock.Anything, api.FilterAll).Return(&api.TaskList{Total: 2}, nil)

		require.NoError(t, NewClearAllCommand(app, false).Execute(context.Background(), nil))
		assert.Contains(t, out.String(), "Clear cancelled.")
		m.AssertNotCalled(t, "ClearAll", mock.Anything)
	})

	t.Run("nothing to clear", func(t *testing.T) {
		app, m, out := setupTestApp(t)
		m.On("List", mock.Anything, api.FilterAll).Return(&api.TaskList{}, nil)

		require.NoError(t, NewClearAllCommand(app, false).Execute(context.Background(), nil))
		assert.Equal(t, "No tasks to clear.\n", out.String())
	})
}

func TestSyncCommand(t *testing.T) {
	failure := services.SyncFailure{TaskID: sampleID, Operation: "create", Err: errors.New("status 500")}

	tests := []struct {
		name     string
		verbose  bool
		report   *services.SyncReport
		contains []string
	}{
		{
			name:     "offline",
			report:   &services.SyncReport{Total: 2, Offline: true},
			contains: []string{"Remote sync is disabled; 2 tasks kept locally"},
		},
		{
			name:     "all synced",
			report:   &services.SyncReport{Total: 3, Created: 1, Updated: 2},
			contains: []string{"Synced 3 tasks: 1 created, 2 updated, 0 failed"},
		},
		{
			name:     "failures summarized",
			report:   &services.SyncReport{Total: 1, Failed: 1, Failures: []services.SyncFailure{failure}},
			contains: []string{"0 created, 0 updated, 1 failed", "sent again on the next sync", "--verbose"},
		},
		{
			name:     "failures detailed when verbose",
			verbose:  true,
			report:   &services.SyncReport{Total: 1, Failed: 1, Failures: []services.SyncFailure{failure}},
			contains: []string{"create 3f2a9c1e: status 500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, m, out := setupTestApp(t)
			app.config.Application.Verbose = tt.verbose
			m.On("Sync", mock.Anything).Return(tt.report, nil)

			require.NoError(t, NewSyncCommand(app).Execute(context.Background(), nil))
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestSyncCommand_CacheFailure(t *testing.T) {
	app, m, _ := setupTestApp(t)
	m.On("Sync", mock.Anything).Return(nil, apperrors.NewStorageError("put tasks", errors.New("locked")))

	err := NewSyncCommand(app).Execute(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to sync tasks")
}

func TestExportCommand(t *testing.T) {
	list := &api.TaskList{
		Tasks:     []api.TaskView{*sampleView("buy milk, 2%", false)},
		Remaining: 1,
		Total:     1,
	}

	t.Run("csv", func(t *testing.T) {
		app, m, out := setupTestApp(t)
		m.On("List", mock.Anything, api.FilterAll).Return(list, nil)

		require.NoError(t, NewExportCommand(app).Execute(context.Background(), nil))

		records, err := csv.NewReader(strings.NewReader(out.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, []string{"ID", "Text", "Done", "Created At", "Remote ID"}, records[0])
		assert.Equal(t, []string{sampleID, "buy milk, 2%", "false", "2024-01-15T10:00:00Z", ""}, records[1])
	})

	t.Run("json", func(t *testing.T) {
		app, m, out := setupTestApp(t)
		m.On("List", mock.Anything, api.FilterAll).Return(list, nil)

		require.NoError(t, NewExportCommand(app).Execute(context.Background(), []string{"JSON"}))

		var decoded api.TaskList
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		require.Len(t, decoded.Tasks, 1)
		assert.Equal(t, "buy milk, 2%", decoded.Tasks[0].Text)
		assert.Equal(t, 1, decoded.Remaining)
	})

	t.Run("unsupported format", func(t *testing.T) {
		app, _, _ := setupTestApp(t)

		err := NewExportCommand(app).Execute(context.Background(), []string{"xml"})

		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
	})
}

func TestConfigCommand_MasksSecrets(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Database.Dir = t.TempDir()
	cfg.Remote.BaseURL = "http://localhost:8000/api/resource/ToDo"
	cfg.Remote.APIKey = "key"
	cfg.Remote.APISecret = "secret"
	out := &bytes.Buffer{}

	require.NoError(t, NewConfigCommand(cfg, "", out).Execute(context.Background()))

	output := out.String()
	assert.Contains(t, output, "# config file: none")
	assert.Contains(t, output, "# database: "+filepath.Join(cfg.Database.Dir, "td.db"))
	assert.Contains(t, output, "# schema version: none (cache not created yet)")
	assert.Contains(t, output, "base_url: http://localhost:8000/api/resource/ToDo")
	assert.Contains(t, output, "****")
	assert.NotContains(t, output, "api_key: key")
	assert.NotContains(t, output, "api_secret: secret")
	assert.Equal(t, "key", cfg.Remote.APIKey, "the live config is not modified")
}

func TestConfigCommand_ReportsSchemaVersion(t *testing.T) {
	t.Run("existing cache", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Database.Dir = t.TempDir()
		repo, err := config.CreateRepository(cfg)
		require.NoError(t, err)
		require.NoError(t, repo.Close())
		out := &bytes.Buffer{}

		require.NoError(t, NewConfigCommand(cfg, "", out).Execute(context.Background()))

		assert.Contains(t, out.String(), "# schema version: 1\n")
	})

	t.Run("in-memory cache", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Database.Filename = config.MemoryDatabase
		out := &bytes.Buffer{}

		require.NoError(t, NewConfigCommand(cfg, "", out).Execute(context.Background()))

		assert.Contains(t, out.String(), "# schema version: in-memory\n")
	})

	t.Run("unreadable cache", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Database.Dir = t.TempDir()
		require.NoError(t, os.WriteFile(cfg.GetDatabasePath(), []byte("not a database"), 0o600))

		err := NewConfigCommand(cfg, "", &bytes.Buffer{}).Execute(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open task cache")
	})
}
