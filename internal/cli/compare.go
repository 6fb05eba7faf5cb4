package cli

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"docbench/internal/domain"
	"docbench/internal/report"
	"docbench/internal/source"
)

var (
	compareFlags runFlags
	compareJSON  bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <file>",
	Short: "Compare both vendors on a single document",
	Long: `Sends one document to every configured vendor and writes a report with
a single record. Vendor failures are recorded in the report; only input,
configuration and output errors make the command fail. With --json the
record is also printed to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	compareFlags.register(compareCmd)
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "print the comparison record as JSON to stdout")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	path := args[0]
	r, err := newRunner(&compareFlags, false)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc := r.service(source.NewList([]string{path}))
	rec, err := svc.CompareServices(ctx, path, compareFlags.models())
	if err != nil {
		return err
	}
	if compareJSON {
		if err := report.WriteRecordJSON(cmd.OutOrStdout(), rec); err != nil {
			return err
		}
	}

	rep := domain.NewBatchReport(uuid.NewString(), []domain.ComparisonRecord{*rec}, time.Now())
	return r.finish(ctx, cmd, rep)
}
