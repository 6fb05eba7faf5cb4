package google

import (
	"strings"

	"google.golang.org/api/documentai/v1"

	"docbench/internal/analyzer"
	"docbench/internal/domain"
)

func toExtraction(doc *documentai.GoogleCloudDocumentaiV1Document) *domain.Extraction {
	text := []rune(doc.Text)
	var stats analyzer.ConfidenceStats
	tables := []domain.Table{}
	formFields := 0

	for _, page := range doc.Pages {
		if page == nil {
			continue
		}
		for _, t := range page.Tables {
			if t == nil {
				continue
			}
			var table domain.Table
			for _, row := range t.HeaderRows {
				table = append(table, rowText(text, row, nil))
			}
			for _, row := range t.BodyRows {
				table = append(table, rowText(text, row, &stats))
			}
			if table == nil {
				table = domain.Table{}
			}
			tables = append(tables, table)
		}
		for _, field := range page.FormFields {
			if field == nil {
				continue
			}
			formFields++
			if field.FieldValue != nil {
				addConfidence(&stats, field.FieldValue.Confidence)
			}
		}
	}

	for _, e := range doc.Entities {
		if e != nil {
			addConfidence(&stats, e.Confidence)
		}
	}

	ext := &domain.Extraction{
		Text:           doc.Text,
		Tables:         tables,
		PageCount:      len(doc.Pages),
		FormFieldCount: formFields,
		EntityCount:    len(doc.Entities),
		Raw:            rawDocument(doc),
	}
	ext.Confidence, ext.ConfidenceMin, ext.ConfidenceMax = stats.Summary()
	return ext
}

func rowText(text []rune, row *documentai.GoogleCloudDocumentaiV1DocumentPageTableTableRow, stats *analyzer.ConfidenceStats) []string {
	if row == nil {
		return []string{}
	}
	cells := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		if cell == nil || cell.Layout == nil {
			cells = append(cells, "")
			continue
		}
		cells = append(cells, anchorText(text, cell.Layout.TextAnchor))
		if stats != nil {
			addConfidence(stats, cell.Layout.Confidence)
		}
	}
	return cells
}

// anchorText resolves a text anchor against the document text. Offsets are
// code point indexes; out-of-range segments are clamped.
func anchorText(text []rune, anchor *documentai.GoogleCloudDocumentaiV1DocumentTextAnchor) string {
	if anchor == nil {
		return ""
	}
	var b strings.Builder
	for _, seg := range anchor.TextSegments {
		if seg == nil {
			continue
		}
		start, end := clamp(seg.StartIndex, len(text)), clamp(seg.EndIndex, len(text))
		if start < end {
			b.WriteString(string(text[start:end]))
		}
	}
	return strings.TrimSpace(b.String())
}

func clamp(i int64, n int) int {
	if i < 0 {
		return 0
	}
	if i > int64(n) {
		return n
	}
	return int(i)
}

// addConfidence records c when the vendor reported it; proto3 omits unset
// confidences, which decode as zero.
func addConfidence(stats *analyzer.ConfidenceStats, c float64) {
	if c > 0 {
		stats.Add(c)
	}
}
