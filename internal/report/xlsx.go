package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"docbench/internal/domain"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// WriteXLSX writes rep as a workbook with a Results sheet using Columns and a
// Summary sheet with the batch aggregate.
func WriteXLSX(w io.Writer, rep *domain.BatchReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range rep.Records {
		cells := recordCells(&rep.Records[i])
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, axis, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(resultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	for i, row := range summaryRows(rep) {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, axis, &row); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return &SerializationError{Format: FormatXLSX, Err: err}
	}
	return nil
}

func summaryRows(rep *domain.BatchReport) [][]any {
	ps := rep.Summary.PerformanceSummary
	return [][]any{
		{"run_id", rep.RunID},
		{"generated_at", rep.GeneratedAt.Format(time.RFC3339)},
		{"total_documents", rep.Summary.TotalDocuments},
		{"successful_comparisons", rep.Summary.SuccessfulComparisons},
		{"azure_avg_time", optional(ps.AzureAvgTime)},
		{"google_avg_time", optional(ps.GoogleAvgTime)},
		{"azure_fastest_count", ps.AzureFastestCount},
		{"google_fastest_count", ps.GoogleFastestCount},
	}
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
