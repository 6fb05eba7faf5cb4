package analyzer

import (
	"fmt"
	"sort"

	"docbench/internal/config"
	"docbench/internal/domain"
	"docbench/internal/port"
)

// ProviderFactory creates a VendorClient from the application config.
type ProviderFactory func(cfg *config.Config) (port.VendorClient, error)

// registry of vendor client factories, populated explicitly via RegisterProvider.
var providers = map[domain.Vendor]ProviderFactory{}

// RegisterProvider registers a vendor client factory.
func RegisterProvider(vendor domain.Vendor, factory ProviderFactory) {
	providers[vendor] = factory
}

// NewClient creates the VendorClient for vendor using the registered factory.
func NewClient(vendor domain.Vendor, cfg *config.Config) (port.VendorClient, error) {
	factory, ok := providers[vendor]
	if !ok {
		return nil, fmt.Errorf("unknown vendor provider: %s", vendor)
	}
	return factory(cfg)
}

// NewClients builds one client per known vendor. A vendor whose client cannot
// be built gets an Unavailable client carrying the reason, so every
// comparison still records a result for it.
func NewClients(cfg *config.Config) ([]port.VendorClient, map[domain.Vendor]error) {
	clients := make([]port.VendorClient, 0, len(domain.KnownVendors))
	failures := map[domain.Vendor]error{}
	for _, v := range domain.KnownVendors {
		c, err := NewClient(v, cfg)
		if err != nil {
			failures[v] = err
			c = Unavailable(v, err)
		}
		clients = append(clients, c)
	}
	return clients, failures
}

// RegisteredVendors returns the vendors that have a registered factory.
func RegisteredVendors() []domain.Vendor {
	out := make([]domain.Vendor, 0, len(providers))
	for v := range providers {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
