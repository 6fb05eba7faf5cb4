package report_test

import (
	"errors"
	"time"

	"docbench/internal/domain"
)

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func succeeded(vendor domain.Vendor, text string, tables int, conf *float64, elapsed time.Duration) domain.VendorResult {
	ts := make([]domain.Table, tables)
	for i := range ts {
		ts[i] = domain.Table{{"h"}, {"v"}}
	}
	return domain.NewVendorResult(vendor, &domain.Extraction{
		ModelID:    "m",
		Text:       text,
		Tables:     ts,
		Confidence: conf,
		PageCount:  1,
	}, elapsed)
}

func failed(vendor domain.Vendor, msg string) domain.VendorResult {
	return domain.NewFailedVendorResult(vendor, "m",
		domain.NewVendorCallError(vendor, domain.ErrorKindService, errors.New(msg)), 300*time.Millisecond)
}

func sampleReport() *domain.BatchReport {
	records := []domain.ComparisonRecord{
		domain.NewComparisonRecord("a.pdf", []domain.VendorResult{
			succeeded(domain.VendorAzure, "hello, world", 2, domain.Float64Ptr(0.9), 1500*time.Millisecond),
			succeeded(domain.VendorGoogle, "hello", 1, nil, 1000*time.Millisecond),
		}, testTime),
		domain.NewComparisonRecord("b.png", []domain.VendorResult{
			succeeded(domain.VendorAzure, "x", 0, domain.Float64Ptr(0.5), 250*time.Millisecond),
			failed(domain.VendorGoogle, "status 500, internal"),
		}, testTime),
	}
	return domain.NewBatchReport("run-1", records, testTime)
}
