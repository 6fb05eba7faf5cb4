package s3

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"docbench/internal/domain"
	"docbench/internal/port"
)

// Source reads documents stored under an S3 prefix. Document IDs are object
// keys.
type Source struct {
	storage port.ObjectStorage
	bucket  string
	prefix  string
}

// NewSource creates a document source over s3://bucket/prefix.
func NewSource(storage port.ObjectStorage, bucket, prefix string) *Source {
	return &Source{storage: storage, bucket: bucket, prefix: prefix}
}

// ParseURI splits an s3://bucket/prefix URI.
func ParseURI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%q is not an s3:// URI: %w", uri, domain.ErrInvalidInput)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%q has no bucket: %w", uri, domain.ErrInvalidInput)
	}
	return bucket, prefix, nil
}

// List returns supported object keys under the prefix in lexicographic order.
func (s *Source) List(ctx context.Context) ([]string, error) {
	keys, err := s.storage.List(ctx, s.bucket, s.prefix)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if strings.HasSuffix(k, "/") || !domain.IsSupportedFile(k) {
			continue
		}
		out = append(out, k)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.prefix, domain.ErrNoDocuments)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Source) Read(ctx context.Context, id string) ([]byte, error) {
	return s.storage.Download(ctx, s.bucket, id)
}
