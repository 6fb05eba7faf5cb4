package domain

import (
	"encoding/json"
	"errors"
	"math"
	"time"
	"unicode/utf8"
)

// Table is an ordered sequence of rows, each an ordered sequence of cell strings.
type Table [][]string

// Extraction is the vendor-agnostic content an adapter builds from a
// successful vendor response.
type Extraction struct {
	ModelID        string
	Text           string
	Tables         []Table
	Confidence     *float64
	ConfidenceMin  *float64
	ConfidenceMax  *float64
	PageCount      int
	FormFieldCount int
	EntityCount    int
	Raw            json.RawMessage
}

// VendorResult is the normalized outcome of one vendor call. When Error is
// set the content fields carry no meaning; ProcessingTimeSeconds is always set.
type VendorResult struct {
	Vendor                Vendor          `json:"vendor"`
	ModelID               string          `json:"model_id"`
	ExtractedText         string          `json:"extracted_text"`
	Tables                []Table         `json:"tables"`
	Confidence            *float64        `json:"confidence"`
	ConfidenceMin         *float64        `json:"confidence_min,omitempty"`
	ConfidenceMax         *float64        `json:"confidence_max,omitempty"`
	PageCount             int             `json:"page_count"`
	FormFieldCount        int             `json:"form_field_count"`
	EntityCount           int             `json:"entity_count"`
	ProcessingTimeSeconds float64         `json:"processing_time_seconds"`
	RawResponse           json.RawMessage `json:"raw_response,omitempty"`
	Error                 *string         `json:"error"`
	ErrorKind             ErrorKind       `json:"error_kind,omitempty"`
}

// NewVendorResult builds a successful result from an adapter extraction.
func NewVendorResult(vendor Vendor, ext *Extraction, elapsed time.Duration) VendorResult {
	tables := ext.Tables
	if tables == nil {
		tables = []Table{}
	}
	return VendorResult{
		Vendor:                vendor,
		ModelID:               ext.ModelID,
		ExtractedText:         ext.Text,
		Tables:                tables,
		Confidence:            finite(ext.Confidence),
		ConfidenceMin:         finite(ext.ConfidenceMin),
		ConfidenceMax:         finite(ext.ConfidenceMax),
		PageCount:             ext.PageCount,
		FormFieldCount:        ext.FormFieldCount,
		EntityCount:           ext.EntityCount,
		ProcessingTimeSeconds: seconds(elapsed),
		RawResponse:           ext.Raw,
	}
}

// NewFailedVendorResult builds the error shell for a failed call.
func NewFailedVendorResult(vendor Vendor, modelID string, err error, elapsed time.Duration) VendorResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	kind := ErrorKindService
	var callErr *VendorCallError
	if errors.As(err, &callErr) {
		kind = callErr.Kind
	}
	return VendorResult{
		Vendor:                vendor,
		ModelID:               modelID,
		Tables:                []Table{},
		ProcessingTimeSeconds: seconds(elapsed),
		Error:                 &msg,
		ErrorKind:             kind,
	}
}

// Succeeded reports whether the vendor call produced meaningful content.
func (r *VendorResult) Succeeded() bool {
	return r.Error == nil
}

// TextLength returns the extracted text length in characters.
func (r *VendorResult) TextLength() int {
	return utf8.RuneCountInString(r.ExtractedText)
}

// TableCount returns the number of detected tables.
func (r *VendorResult) TableCount() int {
	return len(r.Tables)
}

// ErrorMessage returns the failure description, or "" on success.
func (r *VendorResult) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

func seconds(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return d.Seconds()
}

// finite drops NaN and infinities so reports never carry unrepresentable values.
func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	out := *v
	return &out
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
