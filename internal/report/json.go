// Package report renders batch comparison results as JSON, CSV and XLSX.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"docbench/internal/domain"
)

// SerializationError indicates a report could not be encoded or decoded.
type SerializationError struct {
	Format string
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s report serialization failed: %v", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep *domain.BatchReport) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return &SerializationError{Format: FormatJSON, Err: err}
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing json report: %w", err)
	}
	return nil
}

// WriteRecordJSON writes a single comparison record as indented JSON.
func WriteRecordJSON(w io.Writer, rec *domain.ComparisonRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return &SerializationError{Format: FormatJSON, Err: err}
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing json record: %w", err)
	}
	return nil
}

// ReadJSON parses a report written by WriteJSON.
func ReadJSON(r io.Reader) (*domain.BatchReport, error) {
	var rep domain.BatchReport
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, &SerializationError{Format: FormatJSON, Err: err}
	}
	if rep.Records == nil {
		rep.Records = []domain.ComparisonRecord{}
	}
	return &rep, nil
}
