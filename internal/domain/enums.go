package domain

import (
	"path/filepath"
	"strings"
)

// Vendor identifies one of the document-analysis services under comparison.
type Vendor string

const (
	VendorAzure  Vendor = "azure"
	VendorGoogle Vendor = "google"
)

// KnownVendors lists every vendor in the fixed order used for reports and
// sequential execution.
var KnownVendors = []Vendor{VendorAzure, VendorGoogle}

var vendorDisplayNames = map[Vendor]string{
	VendorAzure:  "Azure Document Intelligence",
	VendorGoogle: "Google Cloud Document AI",
}

// DisplayName returns the human-readable service name.
func (v Vendor) DisplayName() string {
	if name, ok := vendorDisplayNames[v]; ok {
		return name
	}
	return string(v)
}

// IsKnown reports whether v is one of KnownVendors.
func (v Vendor) IsKnown() bool {
	_, ok := vendorDisplayNames[v]
	return ok
}

// ParseVendor converts a string to a known Vendor.
func ParseVendor(s string) (Vendor, bool) {
	v := Vendor(strings.ToLower(strings.TrimSpace(s)))
	return v, v.IsKnown()
}

// ModelSelection maps each vendor to the model (Azure) or processor (Google)
// identifier used for a call. Values are opaque to the comparison core.
type ModelSelection map[Vendor]string

// ErrorKind classifies a failed vendor call.
type ErrorKind string

const (
	ErrorKindAuth              ErrorKind = "auth"
	ErrorKindTimeout           ErrorKind = "timeout"
	ErrorKindRateLimited       ErrorKind = "rate_limited"
	ErrorKindUnsupportedFormat ErrorKind = "unsupported_format"
	ErrorKindService           ErrorKind = "service"
	ErrorKindUnavailable       ErrorKind = "unavailable"
	ErrorKindCanceled          ErrorKind = "canceled"
)

// DefaultContentType is used when neither sniffing nor the extension yields a
// supported type.
const DefaultContentType = "application/pdf"

// SupportedExtensions maps lower-case file extensions (with dot) to MIME types.
var SupportedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// SupportedContentTypes is the set of MIME types both vendors accept.
var SupportedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/tiff":      true,
	"image/bmp":       true,
	"image/webp":      true,
}

// IsSupportedFile reports whether name carries a supported document extension.
func IsSupportedFile(name string) bool {
	_, ok := SupportedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ContentTypeForExtension returns the MIME type for name's extension, or
// DefaultContentType when the extension is unknown.
func ContentTypeForExtension(name string) string {
	if ct, ok := SupportedExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return DefaultContentType
}
