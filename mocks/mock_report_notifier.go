package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docbench/internal/domain"
)

// MockReportNotifier is a mock implementation of port.ReportNotifier.
type MockReportNotifier struct {
	mock.Mock
}

func (m *MockReportNotifier) NotifyReport(ctx context.Context, rep *domain.BatchReport, location string) error {
	args := m.Called(ctx, rep, location)
	return args.Error(0)
}
