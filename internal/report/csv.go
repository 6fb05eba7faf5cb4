package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"docbench/internal/domain"
)

// BOM is the UTF-8 byte order mark some spreadsheet tools need to detect the
// encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the fixed header of the tabular report. Missing values (failed
// vendor, no confidence reported, no winner) are empty cells.
var Columns = []string{
	"document_id",
	"azure_processing_time",
	"google_processing_time",
	"azure_text_length",
	"google_text_length",
	"azure_table_count",
	"google_table_count",
	"azure_confidence",
	"google_confidence",
	"faster_vendor",
	"text_length_delta",
	"table_count_delta",
	"confidence_delta",
	"form_field_delta",
	"azure_page_count",
	"google_page_count",
	"azure_error",
	"google_error",
}

// Writer wraps csv.Writer for exporting comparison records.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteRecords writes one row per record.
func (w *Writer) WriteRecords(records []domain.ComparisonRecord) error {
	for i := range records {
		if err := w.csv.Write(recordToRow(&records[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes the header and all records of rep, optionally prefixed by
// a BOM.
func WriteCSV(out io.Writer, rep *domain.BatchReport, withBOM bool) error {
	if withBOM {
		if _, err := out.Write(BOM); err != nil {
			return err
		}
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteRecords(rep.Records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func recordToRow(rec *domain.ComparisonRecord) []string {
	cells := recordCells(rec)
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = formatCell(c)
	}
	return row
}

// recordCells returns one typed value per column; nil marks a missing value.
func recordCells(rec *domain.ComparisonRecord) []any {
	cells := make([]any, len(Columns))
	cells[0] = rec.DocumentID

	az, azOK := rec.Result(domain.VendorAzure)
	gg, ggOK := rec.Result(domain.VendorGoogle)

	vendorCells := func(r domain.VendorResult, ok bool, timeCol, textCol, tableCol, confCol, pageCol, errCol int) {
		if !ok {
			return
		}
		if !r.Succeeded() {
			cells[errCol] = r.ErrorMessage()
			return
		}
		cells[timeCol] = r.ProcessingTimeSeconds
		cells[textCol] = r.TextLength()
		cells[tableCol] = r.TableCount()
		if r.Confidence != nil {
			cells[confCol] = *r.Confidence
		}
		cells[pageCol] = r.PageCount
	}
	vendorCells(az, azOK, 1, 3, 5, 7, 14, 16)
	vendorCells(gg, ggOK, 2, 4, 6, 8, 15, 17)

	if rec.FasterVendor != nil {
		cells[9] = string(*rec.FasterVendor)
	}
	if rec.TextLengthDelta != nil {
		cells[10] = *rec.TextLengthDelta
	}
	if rec.TableCountDelta != nil {
		cells[11] = *rec.TableCountDelta
	}
	if rec.ConfidenceDelta != nil {
		cells[12] = *rec.ConfidenceDelta
	}
	if rec.FormFieldDelta != nil {
		cells[13] = *rec.FormFieldDelta
	}
	return cells
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
