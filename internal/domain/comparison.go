package domain

import (
	"errors"
	"fmt"
	"time"
)

// errNotConfigured fills the result slot of a vendor the caller did not supply.
var errNotConfigured = errors.New("vendor client not configured")

// ComparisonRecord is the per-document result of invoking every known vendor.
// Derived fields are nil unless both vendors succeeded. Deltas are signed
// azure minus google.
type ComparisonRecord struct {
	DocumentID          string                  `json:"document_id"`
	ComparedAt          time.Time               `json:"compared_at"`
	Results             map[Vendor]VendorResult `json:"results"`
	FasterVendor        *Vendor                 `json:"faster_vendor"`
	ProcessingTimeDelta *float64                `json:"processing_time_delta"`
	TextLengthDelta     *int                    `json:"text_length_delta"`
	TableCountDelta     *int                    `json:"table_count_delta"`
	FormFieldDelta      *int                    `json:"form_field_delta"`
	ConfidenceDelta     *float64                `json:"confidence_delta"`
}

// NewComparisonRecord combines the vendor results for one document and
// derives the comparison fields. Results for unknown vendors are ignored and
// missing known vendors get an error shell.
func NewComparisonRecord(documentID string, results []VendorResult, comparedAt time.Time) ComparisonRecord {
	byVendor := make(map[Vendor]VendorResult, len(KnownVendors))
	for i := range results {
		if results[i].Vendor.IsKnown() {
			byVendor[results[i].Vendor] = results[i]
		}
	}
	for _, v := range KnownVendors {
		if _, ok := byVendor[v]; !ok {
			byVendor[v] = NewFailedVendorResult(v, "", NewVendorCallError(v, ErrorKindUnavailable, errNotConfigured), 0)
		}
	}

	rec := ComparisonRecord{
		DocumentID: documentID,
		ComparedAt: comparedAt.UTC(),
		Results:    byVendor,
	}
	rec.derive()
	return rec
}

func (c *ComparisonRecord) derive() {
	if !c.BothSucceeded() {
		return
	}
	a := c.Results[KnownVendors[0]]
	b := c.Results[KnownVendors[1]]

	switch {
	case a.ProcessingTimeSeconds < b.ProcessingTimeSeconds:
		v := a.Vendor
		c.FasterVendor = &v
	case b.ProcessingTimeSeconds < a.ProcessingTimeSeconds:
		v := b.Vendor
		c.FasterVendor = &v
	}

	c.ProcessingTimeDelta = Float64Ptr(a.ProcessingTimeSeconds - b.ProcessingTimeSeconds)
	c.TextLengthDelta = IntPtr(a.TextLength() - b.TextLength())
	c.TableCountDelta = IntPtr(a.TableCount() - b.TableCount())
	c.FormFieldDelta = IntPtr(a.FormFieldCount - b.FormFieldCount)
	if a.Confidence != nil && b.Confidence != nil {
		c.ConfidenceDelta = Float64Ptr(*a.Confidence - *b.Confidence)
	}
}

// BothSucceeded reports whether every known vendor produced a result.
func (c *ComparisonRecord) BothSucceeded() bool {
	for _, v := range KnownVendors {
		r, ok := c.Results[v]
		if !ok || !r.Succeeded() {
			return false
		}
	}
	return true
}

// Result returns the result recorded for vendor.
func (c *ComparisonRecord) Result(vendor Vendor) (VendorResult, bool) {
	r, ok := c.Results[vendor]
	return r, ok
}

// PerformanceSummary aggregates timing over successful comparisons only.
type PerformanceSummary struct {
	AzureAvgTime       *float64 `json:"azure_avg_time"`
	GoogleAvgTime      *float64 `json:"google_avg_time"`
	AzureFastestCount  int      `json:"azure_fastest_count"`
	GoogleFastestCount int      `json:"google_fastest_count"`
}

// Summary is the batch-level aggregate.
type Summary struct {
	TotalDocuments        int                `json:"total_documents"`
	SuccessfulComparisons int                `json:"successful_comparisons"`
	PerformanceSummary    PerformanceSummary `json:"performance_summary"`
}

// AvgTime returns the average processing time for vendor.
func (s *Summary) AvgTime(vendor Vendor) *float64 {
	switch vendor {
	case VendorAzure:
		return s.PerformanceSummary.AzureAvgTime
	case VendorGoogle:
		return s.PerformanceSummary.GoogleAvgTime
	}
	return nil
}

// FastestCount returns how often vendor was strictly faster.
func (s *Summary) FastestCount(vendor Vendor) int {
	switch vendor {
	case VendorAzure:
		return s.PerformanceSummary.AzureFastestCount
	case VendorGoogle:
		return s.PerformanceSummary.GoogleFastestCount
	}
	return 0
}

// BatchReport is the ordered set of records of one run plus its summary.
type BatchReport struct {
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Summary     Summary            `json:"summary"`
	Records     []ComparisonRecord `json:"detailed_results"`
}

// CheckUniqueDocumentIDs returns ErrInvalidInput naming the first ID that
// appears more than once.
func CheckUniqueDocumentIDs(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate document %q: %w", id, ErrInvalidInput)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// NewBatchReport builds a report from records in input order.
func NewBatchReport(runID string, records []ComparisonRecord, generatedAt time.Time) *BatchReport {
	if records == nil {
		records = []ComparisonRecord{}
	}
	return &BatchReport{
		RunID:       runID,
		GeneratedAt: generatedAt.UTC(),
		Summary:     Summarize(records),
		Records:     records,
	}
}

// Summarize computes the summary aggregate. Averages stay nil when no record
// has both vendors succeeding.
func Summarize(records []ComparisonRecord) Summary {
	totals := make(map[Vendor]float64, len(KnownVendors))
	wins := make(map[Vendor]int, len(KnownVendors))
	successful := 0

	for i := range records {
		rec := &records[i]
		if !rec.BothSucceeded() {
			continue
		}
		successful++
		for _, v := range KnownVendors {
			totals[v] += rec.Results[v].ProcessingTimeSeconds
		}
		if rec.FasterVendor != nil {
			wins[*rec.FasterVendor]++
		}
	}

	avg := func(v Vendor) *float64 {
		if successful == 0 {
			return nil
		}
		return finite(Float64Ptr(totals[v] / float64(successful)))
	}

	return Summary{
		TotalDocuments:        len(records),
		SuccessfulComparisons: successful,
		PerformanceSummary: PerformanceSummary{
			AzureAvgTime:       avg(VendorAzure),
			GoogleAvgTime:      avg(VendorGoogle),
			AzureFastestCount:  wins[VendorAzure],
			GoogleFastestCount: wins[VendorGoogle],
		},
	}
}
