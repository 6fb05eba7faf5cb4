package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docbench/internal/domain"
	"docbench/internal/logger"
	"docbench/internal/port"
	"docbench/internal/service"
	"docbench/mocks"
)

var pdfBytes = []byte("%PDF-1.4\n%test\n")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newVendorMock(vendor domain.Vendor) *mocks.MockVendorClient {
	m := new(mocks.MockVendorClient)
	m.On("Vendor").Return(vendor)
	return m
}

func forDocument(id string) interface{} {
	return mock.MatchedBy(func(in port.AnalyzeInput) bool { return in.DocumentID == id })
}

// expectCall makes the client take d on the fake clock and return ext or err.
func expectCall(m *mocks.MockVendorClient, clock *fakeClock, id string, d time.Duration, ext *domain.Extraction, err error) {
	call := m.On("Analyze", mock.Anything, forDocument(id)).Run(func(mock.Arguments) { clock.Advance(d) })
	if err != nil {
		call.Return(nil, err)
		return
	}
	call.Return(ext, nil)
}

func sequentialService(clients []port.VendorClient, src port.DocumentSource, clock *fakeClock) service.ComparisonService {
	return service.NewComparisonService(clients, src,
		service.ComparisonConfig{Concurrency: 1, ParallelVendors: false},
		logger.Discard(),
		service.WithClock(clock.Now),
		service.WithRunID(func() string { return "run-1" }),
	)
}

func TestCompareServices_BothSucceed(t *testing.T) {
	clock := newFakeClock()
	azure := newVendorMock(domain.VendorAzure)
	google := newVendorMock(domain.VendorGoogle)
	src := new(mocks.MockDocumentSource)
	src.On("Read", mock.Anything, "invoice.pdf").Return(pdfBytes, nil)

	expectCall(azure, clock, "invoice.pdf", 1500*time.Millisecond, &domain.Extraction{
		Text:       "hello world",
		Tables:     []domain.Table{{{"a"}}, {{"b"}}},
		Confidence: domain.Float64Ptr(0.9),
	}, nil)
	expectCall(google, clock, "invoice.pdf", 500*time.Millisecond, &domain.Extraction{
		Text:       "hello",
		Tables:     []domain.Table{{{"a"}}},
		Confidence: domain.Float64Ptr(0.8),
	}, nil)

	svc := sequentialService([]port.VendorClient{azure, google}, src, clock)
	rec, err := svc.CompareServices(context.Background(), "invoice.pdf", nil)
	require.NoError(t, err)

	az, _ := rec.Result(domain.VendorAzure)
	gg, _ := rec.Result(domain.VendorGoogle)
	assert.Equal(t, 1.5, az.ProcessingTimeSeconds)
	assert.Equal(t, 0.5, gg.ProcessingTimeSeconds)
	require.NotNil(t, rec.FasterVendor)
	assert.Equal(t, domain.VendorGoogle, *rec.FasterVendor)
	assert.Equal(t, 6, *rec.TextLengthDelta)
	assert.Equal(t, 1, *rec.TableCountDelta)
	assert.InDelta(t, 0.1, *rec.ConfidenceDelta, 1e-9)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), rec.ComparedAt)

	azure.AssertExpectations(t)
	google.AssertExpectations(t)
	src.AssertExpectations(t)
}

func TestCompareServices_PassesModelSelectionAndContentType(t *testing.T) {
	clock := newFakeClock()
	azure := newVendorMock(domain.VendorAzure)
	google := newVendorMock(domain.VendorGoogle)
	src := new(mocks.MockDocumentSource)
	src.On("Read", mock.Anything, "scan.pdf").Return(pdfBytes, nil)

	azure.On("Analyze", mock.Anything, mock.MatchedBy(func(in port.AnalyzeInput) bool {
		return in.ModelID == "prebuilt-invoice" && in.ContentType == "application/pdf"
	})).Return(&domain.Extraction{Text: "x"}, nil)
	google.On("Analyze", mock.Anything, mock.MatchedBy(func(in port.AnalyzeInput) bool {
		return in.ModelID == "proc-7"
	})).Return(&domain.Extraction{Text: "x"}, nil)

	svc := sequentialService([]port.VendorClient{azure, google}, src, clock)
	rec, err := svc.CompareServices(context.Background(), "scan.pdf", domain.ModelSelection{
		domain.VendorAzure:  "prebuilt-invoice",
		domain.VendorGoogle: "proc-7",
	})
	require.NoError(t, err)

	az, _ := rec.Result(domain.VendorAzure)
	assert.Equal(t, "prebuilt-invoice", az.ModelID)
	// equal times: no winner
	assert.Nil(t, rec.FasterVendor)
	azure.AssertExpectations(t)
	google.AssertExpectations(t)
}

func TestCompareServices_VendorErrorIsRecorded(t *testing.T) {
	clock := newFakeClock()
	azure := newVendorMock(domain.VendorAzure)
	google := newVendorMock(domain.VendorGoogle)
	src := new(mocks.MockDocumentSource)
	src.On("Read", mock.Anything, "a.pdf").Return(pdfBytes, nil)

	expectCall(azure, clock, "a.pdf", 2*time.Second, nil,
		domain.NewVendorCallError(domain.VendorAzure, domain.ErrorKindAuth, errors.New("status 401")))
	expectCall(google, clock, "a.pdf", time.Second, &domain.Extraction{Text: "ok"}, nil)

	svc := sequentialService([]port.VendorClient{azure, google}, src, clock)
	rec, err := svc.CompareServices(context.Background(), "a.pdf", nil)
	require.NoError(t, err)

	az, _ := rec.Result(domain.VendorAzure)
	assert.False(t, az.Succeeded())
	assert.Equal(t, domain.ErrorKindAuth, az.ErrorKind)
	assert.Equal(t, 2.0, az.ProcessingTimeSeconds)
	assert.Nil(t, rec.FasterVendor)
	assert.Nil(t, rec.TextLengthDelta)
}

func TestCompareServices_PlainErrorClassified(t *testing.T) {
	clock := newFakeClock()
	azure := newVendorMock(domain.VendorAzure)
	google := newVendorMock(domain.VendorGoogle)
	src := new(mocks.MockDocumentSource)
	src.On("Read", mock.Anything, "a.pdf").Return(pdfBytes, nil)

	azure.On("Analyze", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("dial: %w", context.DeadlineExceeded))
	google.On("Analyze", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	rec, err := sequentialService([]port.VendorClient{azure, google}, src, clock).
		CompareServices(context.Background(), "a.pdf", nil)
	require.NoError(t, err)

	az, _ := rec.Result(domain.VendorAzure)
	gg, _ := rec.Result(domain.VendorGoogle)
	assert.Equal(t, domain.ErrorKindTimeout, az.ErrorKind)
	assert.Equal(t, domain.ErrorKindService, gg.ErrorKind)
	assert.Contains(t, gg.ErrorMessage(), "boom")
}

type panickingClient struct{}

func (panickingClient) Vendor() domain.Vendor { return domain.VendorGoogle }

func (panickingClient) Analyze(context.Context, port.AnalyzeInput) (*domain.Extraction, error) {
	panic("nil map write")
}

func TestCompareServices_PanicBecomesErrorResult(t *testing.T) {
	clock := newFakeClock()
	azure := newVendorMock(domain.VendorAzure)
	azure.On("Analyze", mock.Anything, mock.Anything).Return(&domain.Extraction{Text: "ok"}, nil)
	src := new(mocks.MockDocumentSource)
	src.On("Read", mock.Anything, "a.pdf").Return(pdfBytes, nil)

	rec, err := sequentialService([]port.VendorClient{azure, panickingClient{}}, src, clock).
		CompareServices(context.Background(), "a.pdf", nil)
	require.NoError(t, err)

	gg, _ := rec.Result(domain.VendorGoogle)
	assert.False(t, gg.Succeeded())
	assert.Contains(t, gg.ErrorMessage(), "panic: nil map write")
}

type blockingClient struct{ vendor domain.Vendor }

func (b blockingClient) Vendor() domain.Vendor { return b.vendor }

func (b blockingClient) Analyze(ctx context.Context, _ port.AnalyzeInput) (*domain.Extraction, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCompareServices_CallTimeout(t *testing.T) {
	azure := newVendorMock(domain.VendorAzure)
	azure.On("Analyze", mock.Anything, mock.Anything).Return(&domain.Extraction{Text: "ok"}, nil)
	src := new(mocks.MockDocumentSource)
	src.On("Read", mock.Anything, "a.pdf").Return(pdfBytes, nil)

	svc := service.NewComparisonService(
		[]port.VendorClient{azure, blockingClient{vendor: domain.VendorGoogle}}, src,
		service.ComparisonConfig{ParallelVendors: true, CallTimeout: 20 * time.Millisecond},
		logger.Discard(),
	)
	rec, err := svc.CompareServices(context.Background(), "a.pdf", nil)
	require.NoError(t, err)

	gg, _ := rec.Result(domain.VendorGoogle)
	assert.Equal(t, domain.ErrorKindTimeout, gg.ErrorKind)
	az, _ := rec.Result(domain.VendorAzure)
	assert.True(t, az.Succeeded())
}

func TestCompareServices_MissingDocument(t *testing.T) {
	azure := newVendorMock(domain.VendorAzure)
	src := new(mocks.MockDocumentSource)
	src.On("Read", mock.Anything, "gone.pdf").Return(nil, fmt.Errorf("gone.pdf: %w", domain.ErrDocumentNotFound))

	_, err := sequentialService([]port.VendorClient{azure}, src, newFakeClock()).
		CompareServices(context.Background(), "gone.pdf", nil)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	azure.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestCompareBytes_UnsupportedType(t *testing.T) {
	azure := newVendorMock(domain.VendorAzure)
	svc := sequentialService([]port.VendorClient{azure}, nil, newFakeClock())

	_, err := svc.CompareBytes(context.Background(), "notes.txt", []byte("plain words"), nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	_, err = svc.CompareBytes(context.Background(), "empty.pdf", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CompareServices(context.Background(), "a.pdf", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompareBytes_MissingVendorGetsShell(t *testing.T) {
	azure := newVendorMock(domain.VendorAzure)
	azure.On("Analyze", mock.Anything, mock.Anything).Return(&domain.Extraction{Text: "ok"}, nil)

	rec, err := sequentialService([]port.VendorClient{azure}, nil, newFakeClock()).
		CompareBytes(context.Background(), "a.pdf", pdfBytes, nil)
	require.NoError(t, err)

	require.Len(t, rec.Results, 2)
	gg, _ := rec.Result(domain.VendorGoogle)
	assert.Equal(t, domain.ErrorKindUnavailable, gg.ErrorKind)
}

func TestBatchCompare_Summary(t *testing.T) {
	clock := newFakeClock()
	azure := newVendorMock(domain.VendorAzure)
	google := newVendorMock(domain.VendorGoogle)
	src := new(mocks.MockDocumentSource)
	for _, id := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		src.On("Read", mock.Anything, id).Return(pdfBytes, nil)
	}

	ok := &domain.Extraction{Text: "text"}
	expectCall(azure, clock, "a.pdf", 1500*time.Millisecond, ok, nil)
	expectCall(google, clock, "a.pdf", 1000*time.Millisecond, ok, nil)
	expectCall(azure, clock, "b.pdf", 1000*time.Millisecond, ok, nil)
	expectCall(google, clock, "b.pdf", 500*time.Millisecond, ok, nil)
	expectCall(azure, clock, "c.pdf", 300*time.Millisecond, nil, errors.New("service unavailable"))
	expectCall(google, clock, "c.pdf", 200*time.Millisecond, ok, nil)

	svc := sequentialService([]port.VendorClient{azure, google}, src, clock)
	rep, err := svc.BatchCompare(context.Background(), []string{"a.pdf", "b.pdf", "c.pdf"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, 3, rep.Summary.TotalDocuments)
	assert.Equal(t, 2, rep.Summary.SuccessfulComparisons)
	ps := rep.Summary.PerformanceSummary
	require.NotNil(t, ps.AzureAvgTime)
	require.NotNil(t, ps.GoogleAvgTime)
	assert.InDelta(t, 1.25, *ps.AzureAvgTime, 1e-9)
	assert.InDelta(t, 0.75, *ps.GoogleAvgTime, 1e-9)
	assert.Equal(t, 0, ps.AzureFastestCount)
	assert.Equal(t, 2, ps.GoogleFastestCount)

	require.Len(t, rep.Records, 3)
	assert.Equal(t, "c.pdf", rep.Records[2].DocumentID)
	az, _ := rep.Records[2].Result(domain.VendorAzure)
	assert.Contains(t, az.ErrorMessage(), "service unavailable")
}

func TestBatchCompare_Empty(t *testing.T) {
	svc := sequentialService(nil, nil, newFakeClock())
	rep, err := svc.BatchCompare(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, rep.Summary.TotalDocuments)
	assert.Equal(t, 0, rep.Summary.SuccessfulComparisons)
	assert.Nil(t, rep.Summary.PerformanceSummary.AzureAvgTime)
	assert.Nil(t, rep.Summary.PerformanceSummary.GoogleAvgTime)
	assert.NotNil(t, rep.Records)
	assert.Empty(t, rep.Records)
}

func TestBatchCompare_RejectsDuplicateIDs(t *testing.T) {
	azure := newVendorMock(domain.VendorAzure)
	google := newVendorMock(domain.VendorGoogle)
	src := new(mocks.MockDocumentSource)

	svc := sequentialService([]port.VendorClient{azure, google}, src, newFakeClock())
	rep, err := svc.BatchCompare(context.Background(), []string{"a.pdf", "b.pdf", "a.pdf"}, nil)
	require.Error(t, err)
	assert.Nil(t, rep)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), `"a.pdf"`)

	src.AssertNotCalled(t, "Read", mock.Anything, mock.Anything)
	azure.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
	google.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestBatchCompare_UnreadableDocumentBecomesRecord(t *testing.T) {
	clock := newFakeClock()
	azure := newVendorMock(domain.VendorAzure)
	google := newVendorMock(domain.VendorGoogle)
	src := new(mocks.MockDocumentSource)
	src.On("Read", mock.Anything, "a.pdf").Return(pdfBytes, nil)
	src.On("Read", mock.Anything, "gone.pdf").Return(nil, fmt.Errorf("gone.pdf: %w", domain.ErrDocumentNotFound))

	expectCall(azure, clock, "a.pdf", time.Second, &domain.Extraction{Text: "x"}, nil)
	expectCall(google, clock, "a.pdf", 2*time.Second, &domain.Extraction{Text: "x"}, nil)

	rep, err := sequentialService([]port.VendorClient{azure, google}, src, clock).
		BatchCompare(context.Background(), []string{"gone.pdf", "a.pdf"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Summary.TotalDocuments)
	assert.Equal(t, 1, rep.Summary.SuccessfulComparisons)
	assert.Equal(t, 1, rep.Summary.PerformanceSummary.AzureFastestCount)

	gone := rep.Records[0]
	assert.Equal(t, "gone.pdf", gone.DocumentID)
	for _, v := range domain.KnownVendors {
		r, _ := gone.Result(v)
		assert.False(t, r.Succeeded())
		assert.Equal(t, domain.ErrorKindUnavailable, r.ErrorKind)
		assert.Zero(t, r.ProcessingTimeSeconds)
	}
}

type sleepyClient struct {
	vendor domain.Vendor
	delays map[string]time.Duration
}

func (s sleepyClient) Vendor() domain.Vendor { return s.vendor }

func (s sleepyClient) Analyze(ctx context.Context, in port.AnalyzeInput) (*domain.Extraction, error) {
	select {
	case <-time.After(s.delays[in.DocumentID]):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &domain.Extraction{Text: in.DocumentID}, nil
}

func TestBatchCompare_PreservesInputOrderUnderConcurrency(t *testing.T) {
	ids := []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf", "f.pdf"}
	delays := map[string]time.Duration{}
	src := new(mocks.MockDocumentSource)
	for i, id := range ids {
		// earlier documents take longer so they finish last
		delays[id] = time.Duration(len(ids)-i) * 5 * time.Millisecond
		src.On("Read", mock.Anything, id).Return(pdfBytes, nil)
	}

	svc := service.NewComparisonService(
		[]port.VendorClient{
			sleepyClient{vendor: domain.VendorAzure, delays: delays},
			sleepyClient{vendor: domain.VendorGoogle, delays: delays},
		},
		src,
		service.ComparisonConfig{Concurrency: 4, ParallelVendors: true},
		logger.Discard(),
	)
	rep, err := svc.BatchCompare(context.Background(), ids, nil)
	require.NoError(t, err)

	require.Len(t, rep.Records, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, rep.Records[i].DocumentID)
		az, _ := rep.Records[i].Result(domain.VendorAzure)
		assert.Equal(t, id, az.ExtractedText)
	}
	assert.Equal(t, len(ids), rep.Summary.SuccessfulComparisons)
	assert.NotEmpty(t, rep.RunID)
}

func TestBatchCompareAll_ListError(t *testing.T) {
	src := new(mocks.MockDocumentSource)
	src.On("List", mock.Anything).Return(nil, fmt.Errorf("dir: %w", domain.ErrNoDocuments))

	_, err := sequentialService(nil, src, newFakeClock()).BatchCompareAll(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}

func TestBatchCompareAll_UsesSourceOrder(t *testing.T) {
	clock := newFakeClock()
	azure := newVendorMock(domain.VendorAzure)
	azure.On("Analyze", mock.Anything, mock.Anything).Return(&domain.Extraction{Text: "x"}, nil)
	src := new(mocks.MockDocumentSource)
	src.On("List", mock.Anything).Return([]string{"b.pdf", "a.pdf"}, nil)
	src.On("Read", mock.Anything, mock.Anything).Return(pdfBytes, nil)

	rep, err := sequentialService([]port.VendorClient{azure}, src, clock).BatchCompareAll(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rep.Records, 2)
	assert.Equal(t, "b.pdf", rep.Records[0].DocumentID)
	assert.Equal(t, "a.pdf", rep.Records[1].DocumentID)
}
