package mocks

import (
	"context"
	"mime/multipart"

	"github.com/stretchr/testify/mock"

	"mediarelay/internal/domain"
)

// MockRelayService is a mock implementation of service.RelayService.
type MockRelayService struct {
	mock.Mock
}

func (m *MockRelayService) Upload(ctx context.Context, files []*multipart.FileHeader) ([]domain.StoredAsset, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StoredAsset), args.Error(1)
}

func (m *MockRelayService) Delete(ctx context.Context, assetURL string) (*domain.DestroyResult, error) {
	args := m.Called(ctx, assetURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DestroyResult), args.Error(1)
}
