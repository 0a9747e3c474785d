package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mediarelay/internal/domain"
	"mediarelay/internal/port"
)

// MockMediaStore is a mock implementation of port.MediaStore.
type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.UploadOutput), args.Error(1)
}

func (m *MockMediaStore) Destroy(ctx context.Context, input port.DestroyInput) (*domain.DestroyResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DestroyResult), args.Error(1)
}

func (m *MockMediaStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
