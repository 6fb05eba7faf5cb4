package noop

import (
	"context"

	"github.com/sirupsen/logrus"

	"docbench/internal/domain"
	"docbench/internal/port"
)

type noopNotifier struct {
	log logrus.FieldLogger
}

// NewNoopNotifier creates a ReportNotifier that only logs the run summary.
func NewNoopNotifier(log logrus.FieldLogger) port.ReportNotifier {
	return &noopNotifier{log: log}
}

func (n *noopNotifier) NotifyReport(_ context.Context, rep *domain.BatchReport, location string) error {
	n.log.WithFields(logrus.Fields{
		"run_id":     rep.RunID,
		"documents":  rep.Summary.TotalDocuments,
		"successful": rep.Summary.SuccessfulComparisons,
		"location":   location,
	}).Info("[NOOP NOTIFY] comparison report ready")
	return nil
}
