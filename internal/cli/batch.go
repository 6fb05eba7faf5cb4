package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docbench/internal/domain"
	"docbench/internal/source"
	s3storage "docbench/internal/storage/s3"
)

var (
	batchFlags runFlags
	batchS3    string
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir | file...]",
	Short: "Compare both vendors over a set of documents",
	Long: `Runs every document through both vendors and writes the comparison report.

A single directory argument processes the supported files directly inside it
in name order. Several arguments are treated as an explicit file list and keep
their order. With --s3 the documents are read from s3://bucket/prefix.`,
	RunE: runBatch,
}

func init() {
	batchFlags.register(batchCmd)
	batchCmd.Flags().StringVar(&batchS3, "s3", "", "read documents from s3://bucket/prefix")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	var bucket, prefix string
	switch {
	case batchS3 != "" && len(args) > 0:
		return fmt.Errorf("--s3 cannot be combined with local paths: %w", domain.ErrInvalidInput)
	case batchS3 != "":
		var err error
		if bucket, prefix, err = s3storage.ParseURI(batchS3); err != nil {
			return err
		}
	case len(args) == 0:
		return fmt.Errorf("provide a directory, a list of files, or --s3: %w", domain.ErrInvalidInput)
	}

	r, err := newRunner(&batchFlags, batchS3 != "")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	models := batchFlags.models()
	var rep *domain.BatchReport
	switch {
	case batchS3 != "":
		rep, err = r.service(s3storage.NewSource(r.storage, bucket, prefix)).BatchCompareAll(ctx, models)
	case len(args) == 1 && isDir(args[0]):
		rep, err = r.service(source.NewDirectory(args[0])).BatchCompareAll(ctx, models)
	default:
		rep, err = r.service(source.NewList(args)).BatchCompare(ctx, args, models)
	}
	if err != nil {
		return err
	}
	return r.finish(ctx, cmd, rep)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
