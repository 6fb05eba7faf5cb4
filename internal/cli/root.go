// Package cli holds the docbench command tree.
package cli

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"docbench/internal/analyzer"
	// Vendor adapters register their providers on import.
	_ "docbench/internal/analyzer/azure"
	_ "docbench/internal/analyzer/google"
	"docbench/internal/config"
	"docbench/internal/domain"
	"docbench/internal/logger"
	"docbench/internal/port"
)

// version is set at build time with -ldflags "-X docbench/internal/cli.version=...".
var version = "dev"

var (
	envFiles []string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "docbench",
	Short: "Compare Azure Document Intelligence and Google Document AI",
	Long: `docbench sends the same documents to Azure Document Intelligence and
Google Cloud Document AI, measures both, and writes a side-by-side report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load before reading the environment (default .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ErrConfig marks failures caused by missing or invalid configuration.
var ErrConfig = errors.New("configuration error")

// loadConfig reads configuration and builds the logger for a command.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}

// buildClients creates a client per known vendor. Vendors that cannot be
// configured are replaced by clients that always fail, so their results are
// recorded as errors.
func buildClients(cfg *config.Config, log logrus.FieldLogger) ([]port.VendorClient, map[domain.Vendor]error) {
	clients, unavailable := analyzer.NewClients(cfg)
	for vendor, err := range unavailable {
		log.WithFields(logrus.Fields{
			"vendor": string(vendor),
			"error":  err.Error(),
		}).Warn("vendor not configured; its results will be recorded as errors")
	}
	return clients, unavailable
}

// requireVendor fails when no vendor at all can be called.
func requireVendor(unavailable map[domain.Vendor]error) error {
	if len(unavailable) >= len(domain.KnownVendors) {
		return fmt.Errorf("%w: no vendor is configured; run `docbench env` to see what is missing", ErrConfig)
	}
	return nil
}
