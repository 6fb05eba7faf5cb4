package source

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"docbench/internal/domain"
)

// ResolveContentType returns the MIME type to send to the vendors. Sniffed
// content wins over the file name; ErrUnsupportedFileType is returned when
// neither identifies a supported document.
func ResolveContentType(name string, data []byte) (string, error) {
	if len(data) > 0 {
		for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
			if domain.SupportedContentTypes[mt.String()] {
				return mt.String(), nil
			}
		}
	}
	if domain.IsSupportedFile(name) {
		return domain.ContentTypeForExtension(name), nil
	}
	return "", fmt.Errorf("%s: %w", name, domain.ErrUnsupportedFileType)
}
