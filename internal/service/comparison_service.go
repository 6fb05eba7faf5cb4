package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"docbench/internal/analyzer"
	"docbench/internal/domain"
	"docbench/internal/port"
	"docbench/internal/source"
)

// ComparisonConfig holds comparison engine settings.
type ComparisonConfig struct {
	Concurrency     int
	ParallelVendors bool
	CallTimeout     time.Duration
}

// ComparisonService runs documents through every vendor and compares the
// results. Only input errors are returned; vendor failures are recorded on
// the per-vendor results.
type ComparisonService interface {
	CompareServices(ctx context.Context, documentID string, models domain.ModelSelection) (*domain.ComparisonRecord, error)
	CompareBytes(ctx context.Context, documentID string, data []byte, models domain.ModelSelection) (*domain.ComparisonRecord, error)
	BatchCompare(ctx context.Context, documentIDs []string, models domain.ModelSelection) (*domain.BatchReport, error)
	BatchCompareAll(ctx context.Context, models domain.ModelSelection) (*domain.BatchReport, error)
}

// Option customizes a ComparisonService.
type Option func(*comparisonService)

// WithClock sets the time source used for timing vendor calls and stamping
// records.
func WithClock(now func() time.Time) Option {
	return func(s *comparisonService) { s.now = now }
}

// WithRunID sets the generator for batch report run IDs.
func WithRunID(gen func() string) Option {
	return func(s *comparisonService) { s.newRunID = gen }
}

type comparisonService struct {
	clients  []port.VendorClient
	source   port.DocumentSource
	cfg      ComparisonConfig
	log      logrus.FieldLogger
	now      func() time.Time
	newRunID func() string
}

// NewComparisonService creates a new ComparisonService. source may be nil
// when documents are only passed as bytes.
func NewComparisonService(
	clients []port.VendorClient,
	source port.DocumentSource,
	cfg ComparisonConfig,
	log logrus.FieldLogger,
	opts ...Option,
) ComparisonService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	s := &comparisonService{
		clients:  clients,
		source:   source,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *comparisonService) CompareServices(ctx context.Context, documentID string, models domain.ModelSelection) (*domain.ComparisonRecord, error) {
	data, err := s.read(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.CompareBytes(ctx, documentID, data, models)
}

func (s *comparisonService) CompareBytes(ctx context.Context, documentID string, data []byte, models domain.ModelSelection) (*domain.ComparisonRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty: %w", documentID, domain.ErrInvalidInput)
	}
	contentType, err := source.ResolveContentType(documentID, data)
	if err != nil {
		return nil, err
	}

	comparedAt := s.now()
	results := s.callVendors(ctx, port.AnalyzeInput{
		DocumentID:  documentID,
		FileBytes:   data,
		ContentType: contentType,
	}, models)

	rec := domain.NewComparisonRecord(documentID, results, comparedAt)
	s.logRecord(&rec)
	return &rec, nil
}

func (s *comparisonService) BatchCompare(ctx context.Context, documentIDs []string, models domain.ModelSelection) (*domain.BatchReport, error) {
	if err := domain.CheckUniqueDocumentIDs(documentIDs); err != nil {
		return nil, err
	}
	runID := s.newRunID()
	records := make([]domain.ComparisonRecord, len(documentIDs))

	s.log.WithFields(logrus.Fields{
		"run_id":      runID,
		"documents":   len(documentIDs),
		"concurrency": s.cfg.Concurrency,
	}).Info("comparison batch started")

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, id := range documentIDs {
		g.Go(func() error {
			records[i] = s.compareForBatch(ctx, id, models)
			return nil
		})
	}
	_ = g.Wait()

	rep := domain.NewBatchReport(runID, records, s.now())
	s.log.WithFields(logrus.Fields{
		"run_id":     runID,
		"documents":  rep.Summary.TotalDocuments,
		"successful": rep.Summary.SuccessfulComparisons,
	}).Info("comparison batch finished")
	return rep, nil
}

func (s *comparisonService) BatchCompareAll(ctx context.Context, models domain.ModelSelection) (*domain.BatchReport, error) {
	if s.source == nil {
		return nil, fmt.Errorf("no document source configured: %w", domain.ErrInvalidInput)
	}
	ids, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.BatchCompare(ctx, ids, models)
}

// compareForBatch never fails: a document that cannot be loaded becomes a
// record whose vendor results are all error shells.
func (s *comparisonService) compareForBatch(ctx context.Context, documentID string, models domain.ModelSelection) domain.ComparisonRecord {
	rec, err := s.CompareServices(ctx, documentID, models)
	if err == nil {
		return *rec
	}

	kind := domain.ErrorKindUnavailable
	if errors.Is(err, domain.ErrUnsupportedFileType) {
		kind = domain.ErrorKindUnsupportedFormat
	}
	s.log.WithFields(logrus.Fields{
		"document": documentID,
		"error":    err.Error(),
	}).Warn("document could not be loaded")

	results := make([]domain.VendorResult, 0, len(domain.KnownVendors))
	for _, v := range domain.KnownVendors {
		results = append(results, domain.NewFailedVendorResult(v, models[v], domain.NewVendorCallError(v, kind, err), 0))
	}
	return domain.NewComparisonRecord(documentID, results, s.now())
}

func (s *comparisonService) read(ctx context.Context, documentID string) ([]byte, error) {
	if s.source == nil {
		return nil, fmt.Errorf("no document source configured: %w", domain.ErrInvalidInput)
	}
	return s.source.Read(ctx, documentID)
}

func (s *comparisonService) callVendors(ctx context.Context, input port.AnalyzeInput, models domain.ModelSelection) []domain.VendorResult {
	results := make([]domain.VendorResult, len(s.clients))
	if !s.cfg.ParallelVendors {
		for i, c := range s.clients {
			results[i] = s.callVendor(ctx, c, input, models)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, c := range s.clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.callVendor(ctx, c, input, models)
		}()
	}
	wg.Wait()
	return results
}

// callVendor invokes one client and converts every outcome, including a
// panic, into a VendorResult.
func (s *comparisonService) callVendor(ctx context.Context, client port.VendorClient, input port.AnalyzeInput, models domain.ModelSelection) (res domain.VendorResult) {
	vendor := client.Vendor()
	input.ModelID = models[vendor]

	if s.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
	}

	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			err := domain.NewVendorCallError(vendor, domain.ErrorKindService, fmt.Errorf("panic: %v", r))
			res = domain.NewFailedVendorResult(vendor, input.ModelID, err, s.now().Sub(start))
		}
		s.logCall(input.DocumentID, &res)
	}()

	ext, err := client.Analyze(ctx, input)
	elapsed := s.now().Sub(start)
	if err != nil {
		return domain.NewFailedVendorResult(vendor, input.ModelID, analyzer.WrapError(vendor, err), elapsed)
	}
	if ext == nil {
		return domain.NewFailedVendorResult(vendor, input.ModelID,
			domain.NewVendorCallError(vendor, domain.ErrorKindService, errors.New("empty response")), elapsed)
	}
	if ext.ModelID == "" {
		ext.ModelID = input.ModelID
	}
	return domain.NewVendorResult(vendor, ext, elapsed)
}

func (s *comparisonService) logCall(documentID string, res *domain.VendorResult) {
	entry := s.log.WithFields(logrus.Fields{
		"document": documentID,
		"vendor":   res.Vendor,
		"elapsed":  res.ProcessingTimeSeconds,
	})
	if res.Succeeded() {
		entry.Debug("vendor call succeeded")
		return
	}
	entry.WithFields(logrus.Fields{
		"error":      res.ErrorMessage(),
		"error_kind": res.ErrorKind,
	}).Warn("vendor call failed")
}

func (s *comparisonService) logRecord(rec *domain.ComparisonRecord) {
	fields := logrus.Fields{"document": rec.DocumentID}
	if rec.FasterVendor != nil {
		fields["faster_vendor"] = *rec.FasterVendor
	}
	s.log.WithFields(fields).Info("document compared")
}
