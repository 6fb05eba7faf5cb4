package domain

import (
	"errors"
	"fmt"
)

// Input errors are fatal to the invoking operation.
var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrNoDocuments         = errors.New("no supported documents found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInvalidInput        = errors.New("invalid input")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
)

// IsInputError reports whether err belongs to the input error family.
func IsInputError(err error) bool {
	return errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrNoDocuments) ||
		errors.Is(err, ErrUnsupportedFileType) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrFileTooLarge)
}

// VendorCallError describes a failed call to a vendor. It is recorded on the
// VendorResult and never aborts a batch.
type VendorCallError struct {
	Vendor Vendor
	Kind   ErrorKind
	Err    error
}

func (e *VendorCallError) Error() string {
	return fmt.Sprintf("%s %s error: %v", e.Vendor, e.Kind, e.Err)
}

func (e *VendorCallError) Unwrap() error {
	return e.Err
}

// NewVendorCallError creates a VendorCallError.
func NewVendorCallError(vendor Vendor, kind ErrorKind, err error) *VendorCallError {
	return &VendorCallError{Vendor: vendor, Kind: kind, Err: err}
}
