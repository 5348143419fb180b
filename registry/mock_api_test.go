package registry

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nomis52/activities/activity"
)

// mockAPI is a testify mock for API.
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) List(ctx context.Context) ([]activity.Activity, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]activity.Activity); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) Details(ctx context.Context, id string) (activity.Activity, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(activity.Activity); ok {
		return a, args.Error(1)
	}
	return activity.Activity{}, args.Error(1)
}

func (m *mockAPI) Create(ctx context.Context, a activity.Activity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAPI) Update(ctx context.Context, a activity.Activity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAPI) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
