package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"docbench/internal/analyzer"
	"docbench/internal/config"
	"docbench/internal/domain"
	"docbench/internal/port"
)

const (
	defaultModel      = "prebuilt-layout"
	defaultAPIVersion = "2023-07-31"
	keyHeader         = "Ocp-Apim-Subscription-Key"
)

func init() {
	analyzer.RegisterProvider(domain.VendorAzure, func(cfg *config.Config) (port.VendorClient, error) {
		if !cfg.Azure.Configured() {
			return nil, errors.New("azure document intelligence endpoint and key are required")
		}
		return NewClient(&cfg.Azure), nil
	})
}

// Client implements port.VendorClient using the Azure Document Intelligence
// REST API.
type Client struct {
	apiKey       string
	model        string
	apiVersion   string
	endpoint     string
	pollInterval time.Duration
	client       *http.Client
}

// NewClient creates an Azure Document Intelligence client.
func NewClient(cfg *config.AzureConfig) *Client {
	return newClient(cfg, "")
}

// NewClientWithEndpoint creates a client pointing at a custom endpoint (for testing).
func NewClientWithEndpoint(cfg *config.AzureConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.AzureConfig, endpoint string) *Client {
	model := cfg.ModelID
	if model == "" {
		model = defaultModel
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	poll := time.Duration(cfg.PollIntervalMillis) * time.Millisecond
	if poll <= 0 {
		poll = time.Second
	}
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}
	return &Client{
		apiKey:       cfg.APIKey,
		model:        model,
		apiVersion:   apiVersion,
		endpoint:     endpoint,
		pollInterval: poll,
		client:       &http.Client{Timeout: timeout},
	}
}

func (c *Client) Vendor() domain.Vendor {
	return domain.VendorAzure
}

// Analyze submits the document and polls the long-running operation until it
// finishes.
func (c *Client) Analyze(ctx context.Context, input port.AnalyzeInput) (*domain.Extraction, error) {
	model := input.ModelID
	if model == "" {
		model = c.model
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = domain.DefaultContentType
	}

	opURL, err := c.submit(ctx, model, contentType, input.FileBytes)
	if err != nil {
		return nil, analyzer.WrapError(domain.VendorAzure, err)
	}

	result, err := c.poll(ctx, opURL)
	if err != nil {
		return nil, analyzer.WrapError(domain.VendorAzure, err)
	}

	ext, err := toExtraction(result.AnalyzeResult)
	if err != nil {
		return nil, domain.NewVendorCallError(domain.VendorAzure, domain.ErrorKindService, err)
	}
	if ext.ModelID == "" {
		ext.ModelID = model
	}
	return ext, nil
}

func (c *Client) analyzeURL(model string) string {
	q := url.Values{}
	q.Set("api-version", c.apiVersion)
	return fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze?%s", c.endpoint, url.PathEscape(model), q.Encode())
}

func (c *Client) submit(ctx context.Context, model, contentType string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.analyzeURL(model), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(keyHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling azure API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return "", analyzer.StatusError(domain.VendorAzure, resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", errors.New("azure API accepted the request without an Operation-Location header")
	}
	return opURL, nil
}

// operationResult models the analyze operation status response.
type operationResult struct {
	Status        string          `json:"status"`
	AnalyzeResult json.RawMessage `json:"analyzeResult"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) poll(ctx context.Context, opURL string) (*operationResult, error) {
	for {
		op, err := c.getOperation(ctx, opURL)
		if err != nil {
			return nil, err
		}
		switch op.Status {
		case "succeeded":
			if len(op.AnalyzeResult) == 0 {
				return nil, errors.New("azure operation succeeded without an analyzeResult")
			}
			return op, nil
		case "failed", "canceled":
			if op.Error != nil {
				return nil, fmt.Errorf("azure analysis %s: %s: %s", op.Status, op.Error.Code, op.Error.Message)
			}
			return nil, fmt.Errorf("azure analysis %s", op.Status)
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) getOperation(ctx context.Context, opURL string) (*operationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating poll request: %w", err)
	}
	req.Header.Set(keyHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polling azure operation: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading poll response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, analyzer.StatusError(domain.VendorAzure, resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	var op operationResult
	if err := json.Unmarshal(respBody, &op); err != nil {
		return nil, fmt.Errorf("unmarshaling poll response: %w", err)
	}
	return &op, nil
}
