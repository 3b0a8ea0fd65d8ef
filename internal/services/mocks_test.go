package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"todo-sync/internal/remote"
	"todo-sync/internal/repository/sqlite"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Put(ctx context.Context, task *sqlite.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockCache) PutMany(ctx context.Context, tasks []*sqlite.Task) error {
	return m.Called(ctx, tasks).Error(0)
}

func (m *mockCache) ReplaceAll(ctx context.Context, tasks []*sqlite.Task) error {
	return m.Called(ctx, tasks).Error(0)
}

func (m *mockCache) GetAll(ctx context.Context) ([]*sqlite.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sqlite.Task), args.Error(1)
}

func (m *mockCache) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCache) DeleteMany(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *mockCache) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) List(ctx context.Context) ([]remote.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]remote.Record), args.Error(1)
}

func (m *mockRemote) Create(ctx context.Context, text string, done bool) (string, error) {
	args := m.Called(ctx, text, done)
	return args.String(0), args.Error(1)
}

func (m *mockRemote) Update(ctx context.Context, remoteID string, text string, done bool) error {
	return m.Called(ctx, remoteID, text, done).Error(0)
}

func (m *mockRemote) Delete(ctx context.Context, remoteID string) error {
	return m.Called(ctx, remoteID).Error(0)
}
