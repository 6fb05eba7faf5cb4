package port

import (
	"context"

	"docbench/internal/domain"
)

// ReportNotifier announces a finished comparison run.
type ReportNotifier interface {
	NotifyReport(ctx context.Context, report *domain.BatchReport, location string) error
}
