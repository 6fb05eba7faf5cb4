package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/documentai/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"docbench/internal/analyzer"
	"docbench/internal/config"
	"docbench/internal/domain"
	"docbench/internal/port"
)

func init() {
	analyzer.RegisterProvider(domain.VendorGoogle, func(cfg *config.Config) (port.VendorClient, error) {
		if !cfg.Google.Configured() {
			return nil, errors.New("google cloud project id is required")
		}
		return NewClient(context.Background(), &cfg.Google)
	})
}

// Client implements port.VendorClient using Google Cloud Document AI.
type Client struct {
	svc         *documentai.Service
	projectID   string
	location    string
	processorID string
	timeout     time.Duration
}

// NewClient creates a Document AI client. Credentials come from the
// configured service account file or application default credentials.
func NewClient(ctx context.Context, cfg *config.GoogleConfig, extra ...option.ClientOption) (*Client, error) {
	location := cfg.Location
	if location == "" {
		location = "us"
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s-documentai.googleapis.com/", location)
	}

	opts := []option.ClientOption{option.WithEndpoint(endpoint)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, extra...)

	svc, err := documentai.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating document ai service: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		svc:         svc,
		projectID:   cfg.ProjectID,
		location:    location,
		processorID: cfg.ProcessorID,
		timeout:     timeout,
	}, nil
}

func (c *Client) Vendor() domain.Vendor {
	return domain.VendorGoogle
}

// processorName resolves a processor id (or a full resource name) to the
// resource name Process expects.
func (c *Client) processorName(processorID string) string {
	if strings.HasPrefix(processorID, "projects/") {
		return processorID
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.projectID, c.location, processorID)
}

// Analyze sends the document inline to the configured processor.
func (c *Client) Analyze(ctx context.Context, input port.AnalyzeInput) (*domain.Extraction, error) {
	processorID := input.ModelID
	if processorID == "" {
		processorID = c.processorID
	}
	if processorID == "" {
		return nil, domain.NewVendorCallError(domain.VendorGoogle, domain.ErrorKindUnavailable,
			errors.New("no document ai processor id configured"))
	}
	mimeType := input.ContentType
	if mimeType == "" {
		mimeType = domain.ContentTypeForExtension(input.DocumentID)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &documentai.GoogleCloudDocumentaiV1ProcessRequest{
		RawDocument: &documentai.GoogleCloudDocumentaiV1RawDocument{
			Content:  base64.StdEncoding.EncodeToString(input.FileBytes),
			MimeType: mimeType,
		},
	}

	resp, err := c.svc.Projects.Locations.Processors.Process(c.processorName(processorID), req).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	if resp.Document == nil {
		return nil, domain.NewVendorCallError(domain.VendorGoogle, domain.ErrorKindService,
			errors.New("empty response from document ai: no document"))
	}

	ext := toExtraction(resp.Document)
	ext.ModelID = processorID
	return ext, nil
}

func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		base := fmt.Errorf("document ai API error (status %d): %s", gerr.Code, gerr.Message)
		if gerr.Code == http.StatusTooManyRequests {
			base = analyzer.NewRateLimitError(domain.VendorGoogle, base, analyzer.ParseRetryAfterHeader(gerr.Header.Get("Retry-After")))
		}
		return domain.NewVendorCallError(domain.VendorGoogle, analyzer.ClassifyHTTPStatus(gerr.Code), base)
	}
	return analyzer.WrapError(domain.VendorGoogle, err)
}

// rawDocument serializes the document for the raw response, without page
// images.
func rawDocument(doc *documentai.GoogleCloudDocumentaiV1Document) json.RawMessage {
	pages := make([]*documentai.GoogleCloudDocumentaiV1DocumentPage, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		if p == nil {
			continue
		}
		cp := *p
		cp.Image = nil
		pages = append(pages, &cp)
	}
	slim := *doc
	slim.Pages = pages
	slim.Content = ""
	raw, err := json.Marshal(&slim)
	if err != nil {
		return nil
	}
	return raw
}
