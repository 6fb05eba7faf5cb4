package azure

import (
	"encoding/json"
	"fmt"

	"docbench/internal/analyzer"
	"docbench/internal/domain"
)

// analyzeResult models the parts of the Document Intelligence analyze result
// used for comparison.
type analyzeResult struct {
	ModelID string `json:"modelId"`
	Content string `json:"content"`
	Pages   []struct {
		PageNumber int `json:"pageNumber"`
	} `json:"pages"`
	Tables []struct {
		RowCount    int `json:"rowCount"`
		ColumnCount int `json:"columnCount"`
		Cells       []struct {
			RowIndex    int      `json:"rowIndex"`
			ColumnIndex int      `json:"columnIndex"`
			RowSpan     int      `json:"rowSpan"`
			ColumnSpan  int      `json:"columnSpan"`
			Content     string   `json:"content"`
			Confidence  *float64 `json:"confidence"`
		} `json:"cells"`
	} `json:"tables"`
	KeyValuePairs []struct {
		Key struct {
			Content string `json:"content"`
		} `json:"key"`
		Value *struct {
			Content string `json:"content"`
		} `json:"value"`
		Confidence *float64 `json:"confidence"`
	} `json:"keyValuePairs"`
}

func toExtraction(raw json.RawMessage) (*domain.Extraction, error) {
	var res analyzeResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("unmarshaling analyze result: %w", err)
	}

	var stats analyzer.ConfidenceStats
	tables := make([]domain.Table, 0, len(res.Tables))
	for _, t := range res.Tables {
		if t.RowCount < 0 || t.ColumnCount < 0 {
			continue
		}
		grid := make(domain.Table, t.RowCount)
		for i := range grid {
			grid[i] = make([]string, t.ColumnCount)
		}
		for _, cell := range t.Cells {
			if cell.RowIndex < 0 || cell.RowIndex >= t.RowCount || cell.ColumnIndex < 0 || cell.ColumnIndex >= t.ColumnCount {
				continue
			}
			grid[cell.RowIndex][cell.ColumnIndex] = cell.Content
			if cell.Confidence != nil {
				stats.Add(*cell.Confidence)
			}
		}
		tables = append(tables, grid)
	}

	for _, kv := range res.KeyValuePairs {
		if kv.Confidence != nil {
			stats.Add(*kv.Confidence)
		}
	}

	ext := &domain.Extraction{
		ModelID:        res.ModelID,
		Text:           res.Content,
		Tables:         tables,
		PageCount:      len(res.Pages),
		FormFieldCount: len(res.KeyValuePairs),
		Raw:            raw,
	}
	ext.Confidence, ext.ConfidenceMin, ext.ConfidenceMax = stats.Summary()
	return ext, nil
}
