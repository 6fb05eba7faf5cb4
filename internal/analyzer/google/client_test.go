package google_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"docbench/internal/analyzer/google"
	"docbench/internal/config"
	"docbench/internal/domain"
	"docbench/internal/port"
)

// Offsets are code points: "Ünit" starts at 0, the header cell "Qty" at 5.
const processResponse = `{
  "document": {
    "text": "Ünit Qty\nBolt 4\nTotal: 4",
    "pages": [{
      "pageNumber": 1,
      "tables": [{
        "headerRows": [{"cells": [
          {"layout": {"textAnchor": {"textSegments": [{"endIndex": "4"}]}, "confidence": 0.99}},
          {"layout": {"textAnchor": {"textSegments": [{"startIndex": "5", "endIndex": "8"}]}}}
        ]}],
        "bodyRows": [{"cells": [
          {"layout": {"textAnchor": {"textSegments": [{"startIndex": "9", "endIndex": "14"}]}, "confidence": 0.8}},
          {"layout": {"textAnchor": {"textSegments": [{"startIndex": "14", "endIndex": "15"}]}, "confidence": 0.6}}
        ]}]
      }],
      "formFields": [
        {"fieldName": {"textAnchor": {"textSegments": [{"startIndex": "16", "endIndex": "22"}]}},
         "fieldValue": {"textAnchor": {"textSegments": [{"startIndex": "23", "endIndex": "24"}]}, "confidence": 1.0}}
      ]
    }, {"pageNumber": 2}],
    "entities": [{"type": "total_amount", "mentionText": "4", "confidence": 0.6}]
  }
}`

func newTestClient(t *testing.T, serverURL string) *google.Client {
	t.Helper()
	cfg := &config.GoogleConfig{
		ProjectID:   "proj-1",
		Location:    "eu",
		ProcessorID: "proc-1",
		Endpoint:    serverURL + "/",
		TimeoutSecs: 5,
	}
	c, err := google.NewClient(context.Background(), cfg, option.WithoutAuthentication())
	require.NoError(t, err)
	return c
}

func TestClient_Analyze_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/projects/proj-1/locations/eu/processors/proc-1:process", r.URL.Path)

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		raw := reqBody["rawDocument"].(map[string]interface{})
		assert.Equal(t, "image/png", raw["mimeType"])
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")), raw["content"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(processResponse))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	assert.Equal(t, domain.VendorGoogle, c.Vendor())

	ext, err := c.Analyze(context.Background(), port.AnalyzeInput{
		DocumentID:  "scan.png",
		FileBytes:   []byte("png-bytes"),
		ContentType: "image/png",
	})
	require.NoError(t, err)

	assert.Equal(t, "proc-1", ext.ModelID)
	assert.Equal(t, "Ünit Qty\nBolt 4\nTotal: 4", ext.Text)
	assert.Equal(t, 2, ext.PageCount)
	assert.Equal(t, 1, ext.FormFieldCount)
	assert.Equal(t, 1, ext.EntityCount)
	require.Len(t, ext.Tables, 1)
	assert.Equal(t, domain.Table{{"Ünit", "Qty"}, {"Bolt", "4"}}, ext.Tables[0])

	// body cells 0.8 and 0.6, form value 1.0, entity 0.6; header cells are not counted
	require.NotNil(t, ext.Confidence)
	assert.InDelta(t, 0.75, *ext.Confidence, 1e-9)
	assert.Equal(t, 0.6, *ext.ConfidenceMin)
	assert.Equal(t, 1.0, *ext.ConfidenceMax)
	assert.NotEmpty(t, ext.Raw)
}

func TestClient_Analyze_ProcessorOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects/proj-1/locations/eu/processors/ocr-2:process", r.URL.Path)
		_, _ = w.Write([]byte(`{"document": {"text": "hello"}}`))
	}))
	defer server.Close()

	ext, err := newTestClient(t, server.URL).Analyze(context.Background(), port.AnalyzeInput{
		DocumentID: "a.pdf",
		FileBytes:  []byte("x"),
		ModelID:    "ocr-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "ocr-2", ext.ModelID)
	assert.Equal(t, "hello", ext.Text)
	assert.Empty(t, ext.Tables)
	assert.NotNil(t, ext.Tables)
	assert.Nil(t, ext.Confidence)
}

func TestClient_Analyze_PermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "Permission denied on processor", "status": "PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Analyze(context.Background(), port.AnalyzeInput{FileBytes: []byte("x")})
	require.Error(t, err)

	var callErr *domain.VendorCallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, domain.VendorGoogle, callErr.Vendor)
	assert.Equal(t, domain.ErrorKindAuth, callErr.Kind)
	assert.Contains(t, err.Error(), "Permission denied")
}

func TestClient_Analyze_NoProcessor(t *testing.T) {
	c, err := google.NewClient(context.Background(), &config.GoogleConfig{
		ProjectID: "proj-1",
		Endpoint:  "http://127.0.0.1:0/",
	}, option.WithoutAuthentication())
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), port.AnalyzeInput{FileBytes: []byte("x")})
	var callErr *domain.VendorCallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, domain.ErrorKindUnavailable, callErr.Kind)
}
