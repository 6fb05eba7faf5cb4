package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docbench/internal/domain"
)

// MockComparisonService is a mock implementation of service.ComparisonService.
type MockComparisonService struct {
	mock.Mock
}

func (m *MockComparisonService) CompareServices(ctx context.Context, documentID string, models domain.ModelSelection) (*domain.ComparisonRecord, error) {
	args := m.Called(ctx, documentID, models)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComparisonRecord), args.Error(1)
}

func (m *MockComparisonService) CompareBytes(ctx context.Context, documentID string, data []byte, models domain.ModelSelection) (*domain.ComparisonRecord, error) {
	args := m.Called(ctx, documentID, data, models)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComparisonRecord), args.Error(1)
}

func (m *MockComparisonService) BatchCompare(ctx context.Context, documentIDs []string, models domain.ModelSelection) (*domain.BatchReport, error) {
	args := m.Called(ctx, documentIDs, models)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchReport), args.Error(1)
}

func (m *MockComparisonService) BatchCompareAll(ctx context.Context, models domain.ModelSelection) (*domain.BatchReport, error) {
	args := m.Called(ctx, models)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchReport), args.Error(1)
}
