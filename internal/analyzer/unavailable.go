package analyzer

import (
	"context"

	"docbench/internal/domain"
	"docbench/internal/port"
)

// unavailableClient stands in for a vendor that is not configured. Every
// call fails immediately with an unavailable error.
type unavailableClient struct {
	vendor domain.Vendor
	reason error
}

// Unavailable returns a VendorClient whose calls always fail with reason.
func Unavailable(vendor domain.Vendor, reason error) port.VendorClient {
	return &unavailableClient{vendor: vendor, reason: reason}
}

func (u *unavailableClient) Vendor() domain.Vendor {
	return u.vendor
}

func (u *unavailableClient) Analyze(_ context.Context, _ port.AnalyzeInput) (*domain.Extraction, error) {
	return nil, domain.NewVendorCallError(u.vendor, domain.ErrorKindUnavailable, u.reason)
}
