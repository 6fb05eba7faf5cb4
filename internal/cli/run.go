package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"docbench/internal/config"
	"docbench/internal/domain"
	"docbench/internal/notify/noop"
	"docbench/internal/notify/ses"
	"docbench/internal/port"
	"docbench/internal/report"
	"docbench/internal/service"
	s3storage "docbench/internal/storage/s3"
)

// newClients builds the vendor clients. Tests replace it.
var newClients = buildClients

// newStorage builds the object storage used for uploads and S3 sources.
// Tests replace it.
var newStorage = func(cfg *config.S3Config) (port.ObjectStorage, error) {
	return s3storage.NewS3Client(cfg)
}

// selectNotifier picks the run notifier. Tests replace it.
var selectNotifier = newNotifier

// runFlags are the flags shared by compare and batch.
type runFlags struct {
	azureModel  string
	googleModel string
	outDir      string
	formats     []string
	concurrency int
	sequential  bool
	noUpload    bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.azureModel, "azure-model", "", "Azure model ID (default from AZURE_MODEL_ID)")
	cmd.Flags().StringVar(&f.googleModel, "google-model", "", "Google processor ID (default from GOOGLE_DOCUMENT_AI_PROCESSOR_ID)")
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "", "directory reports are written to")
	cmd.Flags().StringSliceVarP(&f.formats, "format", "f", nil, "report formats: json, csv, xlsx")
	cmd.Flags().IntVarP(&f.concurrency, "concurrency", "c", 0, "documents processed in parallel")
	cmd.Flags().BoolVar(&f.sequential, "sequential", false, "call vendors one after another and process one document at a time")
	cmd.Flags().BoolVar(&f.noUpload, "no-upload", false, "skip uploading reports to S3")
}

// apply merges flag values over the loaded configuration.
func (f *runFlags) apply(cfg *config.Config) {
	if f.outDir != "" {
		cfg.Report.OutputDir = f.outDir
	}
	if len(f.formats) > 0 {
		cfg.Report.Formats = f.formats
	}
	if f.concurrency > 0 {
		cfg.Comparison.Concurrency = f.concurrency
	}
	if f.sequential {
		cfg.Comparison.Concurrency = 1
		cfg.Comparison.ParallelVendors = false
	}
	if f.noUpload {
		cfg.S3.Bucket = ""
	}
}

func (f *runFlags) models() domain.ModelSelection {
	models := domain.ModelSelection{}
	if f.azureModel != "" {
		models[domain.VendorAzure] = f.azureModel
	}
	if f.googleModel != "" {
		models[domain.VendorGoogle] = f.googleModel
	}
	return models
}

// runner bundles what a comparison run needs.
type runner struct {
	cfg       *config.Config
	log       logrus.FieldLogger
	clients   []port.VendorClient
	storage   port.ObjectStorage
	publisher *report.Publisher
	notifier  port.ReportNotifier
}

// newRunner loads configuration and wires clients, storage, the publisher
// and the notifier. needStorage forces an S3 client even without a report
// bucket, for S3 document sources.
func newRunner(flags *runFlags, needStorage bool) (*runner, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	flags.apply(cfg)

	formats, err := report.ParseFormats(cfg.Report.Formats)
	if err != nil {
		return nil, err
	}
	cfg.Report.Formats = formats

	clients, unavailable := newClients(cfg, log)
	if err := requireVendor(unavailable); err != nil {
		return nil, err
	}

	r := &runner{cfg: cfg, log: log, clients: clients}

	if cfg.S3.Bucket != "" || needStorage {
		r.storage, err = newStorage(&cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}

	r.publisher, err = report.NewPublisher(report.PublisherConfig{
		OutputDir: cfg.Report.OutputDir,
		Formats:   cfg.Report.Formats,
		CSVBOM:    cfg.Report.CSVBOM,
		Storage:   r.storage,
		Bucket:    cfg.S3.Bucket,
		Prefix:    cfg.S3.Prefix,
	}, log)
	if err != nil {
		return nil, err
	}

	r.notifier, err = selectNotifier(&cfg.Notify, log)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func newNotifier(cfg *config.NotifyConfig, log logrus.FieldLogger) (port.ReportNotifier, error) {
	switch cfg.Provider {
	case "", "noop":
		return noop.NewNoopNotifier(log), nil
	case "ses":
		n, err := ses.NewSESNotifier(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.Recipients)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: unknown notify provider %q", ErrConfig, cfg.Provider)
	}
}

func (r *runner) service(src port.DocumentSource) service.ComparisonService {
	return service.NewComparisonService(r.clients, src, service.ComparisonConfig{
		Concurrency:     r.cfg.Comparison.Concurrency,
		ParallelVendors: r.cfg.Comparison.ParallelVendors,
		CallTimeout:     r.cfg.Comparison.CallTimeout,
	}, r.log)
}

// finish publishes the report, prints the summary, and sends the run
// notification. Only publishing errors are returned.
func (r *runner) finish(ctx context.Context, cmd *cobra.Command, rep *domain.BatchReport) error {
	published, err := r.publisher.Publish(ctx, rep)
	if err != nil {
		return err
	}

	printSummary(cmd, rep)
	for _, f := range published.Files {
		cmd.Printf("Report written: %s\n", f)
	}
	for _, u := range published.Uploaded {
		cmd.Printf("Report uploaded: %s\n", u)
	}

	if err := r.notifier.NotifyReport(ctx, rep, published.Location); err != nil {
		r.log.WithFields(logrus.Fields{
			"run_id": rep.RunID,
			"error":  err.Error(),
		}).Warn("run notification failed")
	}
	return nil
}

func printSummary(cmd *cobra.Command, rep *domain.BatchReport) {
	s := rep.Summary
	cmd.Println("Comparison summary")
	cmd.Printf("  Run:                    %s\n", rep.RunID)
	cmd.Printf("  Documents:              %d\n", s.TotalDocuments)
	cmd.Printf("  Successful comparisons: %d\n", s.SuccessfulComparisons)
	for _, v := range domain.KnownVendors {
		avg := "n/a"
		if t := s.AvgTime(v); t != nil {
			avg = fmt.Sprintf("%.2fs", *t)
		}
		cmd.Printf("  %-24s avg %s, fastest %d\n", v.DisplayName()+":", avg, s.FastestCount(v))
	}
	for i := range rep.Records {
		rec := &rep.Records[i]
		for _, v := range domain.KnownVendors {
			if res, ok := rec.Result(v); ok && !res.Succeeded() {
				cmd.Printf("  ! %s: %s %s\n", rec.DocumentID, v, res.ErrorMessage())
			}
		}
	}
}
