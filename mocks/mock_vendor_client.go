package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docbench/internal/domain"
	"docbench/internal/port"
)

// MockVendorClient is a mock implementation of port.VendorClient.
type MockVendorClient struct {
	mock.Mock
}

func (m *MockVendorClient) Vendor() domain.Vendor {
	args := m.Called()
	return args.Get(0).(domain.Vendor)
}

func (m *MockVendorClient) Analyze(ctx context.Context, input port.AnalyzeInput) (*domain.Extraction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extraction), args.Error(1)
}
