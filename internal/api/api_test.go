package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sync/internal/config"
	"todo-sync/internal/errors"
	"todo-sync/internal/services"
)

func setupTestAPI(t *testing.T) API {
	t.Helper()
	repo, err := config.CreateTestRepository()
	require.NoError(t, err, "failed to create in-memory repo")
	t.Cleanup(func() { repo.Close() })

	api := New(services.NewSyncEngine(repo, nil))
	require.NoError(t, api.Initialize(context.Background()))
	return api
}

func TestAPI_TaskLifecycle(t *testing.T) {
	api := setupTestAPI(t)
	ctx := context.Background()

	added, err := api.Add(ctx, "buy milk")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", added.Text)
	assert.Len(t, added.ShortID, ShortIDLength)
	assert.False(t, added.Synced)

	toggled, err := api.Toggle(ctx, added.ShortID)
	require.NoError(t, err)
	assert.True(t, toggled.Done)

	edited, err := api.Edit(ctx, added.ID, "buy oat milk")
	require.NoError(t, err)
	assert.Equal(t, "buy oat milk", edited.Text)
	assert.True(t, edited.Done)

	got, err := api.Get(ctx, added.ID[:4])
	require.NoError(t, err)
	assert.Equal(t, edited, got)

	deleted, err := api.Delete(ctx, added.ShortID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, deleted.ID)

	_, err = api.Get(ctx, added.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestAPI_List(t *testing.T) {
	api := setupTestAPI(t)
	ctx := context.Background()

	first, err := api.Add(ctx, "first")
	require.NoError(t, err)
	_, err = api.Add(ctx, "second")
	require.NoError(t, err)
	_, err = api.Toggle(ctx, first.ID)
	require.NoError(t, err)

	tests := []struct {
		filter Filter
		texts  []string
	}{
		{FilterAll, []string{"second", "first"}},
		{"", []string{"second", "first"}},
		{FilterActive, []string{"second"}},
		{FilterCompleted, []string{"first"}},
		{"COMPLETED", []string{"first"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			list, err := api.List(ctx, tt.filter)
			require.NoError(t, err)

			var texts []string
			for _, v := range list.Tasks {
				texts = append(texts, v.Text)
			}
			assert.Equal(t, tt.texts, texts)
			assert.Equal(t, 1, list.Remaining)
			assert.Equal(t, 2, list.Total)
		})
	}

	_, err = api.List(ctx, "someday")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func TestAPI_ClearCounts(t *testing.T) {
	api := setupTestAPI(t)
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c"} {
		v, err := api.Add(ctx, text)
		require.NoError(t, err)
		if text != "b" {
			_, err = api.Toggle(ctx, v.ID)
			require.NoError(t, err)
		}
	}

	cleared, err := api.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)

	cleared, err = api.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)

	list, err := api.List(ctx, FilterAll)
	require.NoError(t, err)
	assert.Empty(t, list.Tasks)
	assert.NotNil(t, list.Tasks)
}

func TestAPI_SyncOffline(t *testing.T) {
	api := setupTestAPI(t)
	ctx := context.Background()
	_, err := api.Add(ctx, "a")
	require.NoError(t, err)

	report, err := api.Sync(ctx)

	require.NoError(t, err)
	assert.True(t, report.Offline)
	assert.Equal(t, 1, report.Total)
}

func TestAPI_UnknownAndEmptyIDs(t *testing.T) {
	api := setupTestAPI(t)
	ctx := context.Background()

	_, err := api.Toggle(ctx, "nope")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	_, err = api.Delete(ctx, "  ")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}
