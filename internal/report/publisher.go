package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"docbench/internal/domain"
	"docbench/internal/port"
)

// Report formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Output file names, one per format.
const (
	JSONFileName = "comparison_report.json"
	CSVFileName  = "comparison_results.csv"
	XLSXFileName = "comparison_results.xlsx"
)

// presignExpirySeconds is how long the link sent in notifications stays valid.
const presignExpirySeconds = 7 * 24 * 60 * 60

var formatFiles = map[string]struct {
	name        string
	contentType string
}{
	FormatJSON: {JSONFileName, "application/json"},
	FormatCSV:  {CSVFileName, "text/csv; charset=utf-8"},
	FormatXLSX: {XLSXFileName, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
}

// ParseFormats normalizes and validates a list of format names, keeping the
// first occurrence of each.
func ParseFormats(names []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		if _, ok := formatFiles[n]; !ok {
			return nil, fmt.Errorf("unknown report format %q: %w", n, domain.ErrInvalidInput)
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no report formats selected: %w", domain.ErrInvalidInput)
	}
	return out, nil
}

// PublisherConfig holds report publishing settings. Reports are uploaded only
// when Storage is set and Bucket is not empty.
type PublisherConfig struct {
	OutputDir string
	Formats   []string
	CSVBOM    bool
	Storage   port.ObjectStorage
	Bucket    string
	Prefix    string
}

// Published describes where a report was written.
type Published struct {
	Files    []string
	Uploaded []string
	// Location is the link handed to notifiers: a presigned URL of the JSON
	// report when it was uploaded, otherwise the first local file.
	Location string
}

// Publisher writes reports to disk and optionally to object storage.
type Publisher struct {
	cfg PublisherConfig
	log logrus.FieldLogger
}

// NewPublisher creates a Publisher. Formats are validated up front.
func NewPublisher(cfg PublisherConfig, log logrus.FieldLogger) (*Publisher, error) {
	formats, err := ParseFormats(cfg.Formats)
	if err != nil {
		return nil, err
	}
	cfg.Formats = formats
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return &Publisher{cfg: cfg, log: log}, nil
}

// Render encodes rep in the given format.
func (p *Publisher) Render(rep *domain.BatchReport, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJSON:
		err = WriteJSON(&buf, rep)
	case FormatCSV:
		err = WriteCSV(&buf, rep, p.cfg.CSVBOM)
	case FormatXLSX:
		err = WriteXLSX(&buf, rep)
	default:
		err = fmt.Errorf("unknown report format %q: %w", format, domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Publish writes every configured format. Local write failures are returned;
// upload failures are logged and leave the local files in place.
func (p *Publisher) Publish(ctx context.Context, rep *domain.BatchReport) (*Published, error) {
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	out := &Published{}
	var jsonKey string
	for _, format := range p.cfg.Formats {
		ff := formatFiles[format]
		data, err := p.Render(rep, format)
		if err != nil {
			return nil, err
		}

		file := filepath.Join(p.cfg.OutputDir, ff.name)
		if err := os.WriteFile(file, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", file, err)
		}
		out.Files = append(out.Files, file)
		p.log.WithFields(logrus.Fields{"format": format, "file": file}).Info("report written")

		if !p.uploadEnabled() {
			continue
		}
		key := path.Join(p.cfg.Prefix, rep.RunID, ff.name)
		uploaded, err := p.cfg.Storage.Upload(ctx, port.UploadInput{
			Bucket:      p.cfg.Bucket,
			Key:         key,
			Body:        bytes.NewReader(data),
			ContentType: ff.contentType,
		})
		if err != nil {
			p.log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("report upload failed")
			continue
		}
		out.Uploaded = append(out.Uploaded, uploaded.Location)
		if format == FormatJSON {
			jsonKey = key
		}
	}

	if len(out.Files) > 0 {
		out.Location = out.Files[0]
	}
	if jsonKey != "" {
		url, err := p.cfg.Storage.GetPresignedURL(ctx, p.cfg.Bucket, jsonKey, presignExpirySeconds)
		if err != nil {
			p.log.WithField("error", err.Error()).Warn("presigning report url failed")
		} else {
			out.Location = url
		}
	}
	return out, nil
}

func (p *Publisher) uploadEnabled() bool {
	return p.cfg.Storage != nil && p.cfg.Bucket != ""
}
