package port

import (
	"context"

	"docbench/internal/domain"
)

// AnalyzeInput carries the data needed for one vendor call.
type AnalyzeInput struct {
	DocumentID  string
	FileBytes   []byte
	ContentType string
	ModelID     string
}

// VendorClient abstracts one document-analysis service. Implementations own
// authentication and transport and return the normalized extraction of a
// successful call. Errors are captured into the VendorResult by the caller.
type VendorClient interface {
	Vendor() domain.Vendor
	Analyze(ctx context.Context, input AnalyzeInput) (*domain.Extraction, error)
}
