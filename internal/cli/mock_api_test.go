package cli

import (
	"context"

	"github.com/stretchr/testify/mock"

	"todo-sync/internal/api"
	"todo-sync/internal/services"
)

// mockAPI is a testify mock of api.API
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Initialize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockAPI) Add(ctx context.Context, text string) (*api.TaskView, error) {
	args := m.Called(ctx, text)
	return taskViewArg(args, 0), args.Error(1)
}

func (m *mockAPI) Toggle(ctx context.Context, id string) (*api.TaskView, error) {
	args := m.Called(ctx, id)
	return taskViewArg(args, 0), args.Error(1)
}

func (m *mockAPI) Edit(ctx context.Context, id string, text string) (*api.TaskView, error) {
	args := m.Called(ctx, id, text)
	return taskViewArg(args, 0), args.Error(1)
}

func (m *mockAPI) Delete(ctx context.Context, id string) (*api.TaskView, error) {
	args := m.Called(ctx, id)
	return taskViewArg(args, 0), args.Error(1)
}

func (m *mockAPI) ClearCompleted(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockAPI) ClearAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockAPI) Sync(ctx context.Context) (*services.SyncReport, error) {
	args := m.Called(ctx)
	if report, ok := args.Get(0).(*services.SyncReport); ok {
		return report, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) List(ctx context.Context, filter api.Filter) (*api.TaskList, error) {
	args := m.Called(ctx, filter)
	if list, ok := args.Get(0).(*api.TaskList); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) Get(ctx context.Context, id string) (*api.TaskView, error) {
	args := m.Called(ctx, id)
	return taskViewArg(args, 0), args.Error(1)
}

func taskViewArg(args mock.Arguments, index int) *api.TaskView {
	if view, ok := args.Get(index).(*api.TaskView); ok {
		return view
	}
	return nil
}
