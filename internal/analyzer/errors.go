package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"docbench/internal/domain"
)

// RateLimitError indicates a vendor returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Vendor     domain.Vendor
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Vendor, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(vendor domain.Vendor, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Vendor:     vendor,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// ClassifyHTTPStatus maps a non-success vendor HTTP status to an ErrorKind.
func ClassifyHTTPStatus(status int) domain.ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrorKindAuth
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return domain.ErrorKindUnsupportedFormat
	case http.StatusTooManyRequests:
		return domain.ErrorKindRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return domain.ErrorKindTimeout
	case http.StatusServiceUnavailable:
		return domain.ErrorKindUnavailable
	default:
		return domain.ErrorKindService
	}
}

// ClassifyError maps a transport-level error to an ErrorKind.
func ClassifyError(err error) domain.ErrorKind {
	var callErr *domain.VendorCallError
	if errors.As(err, &callErr) {
		return callErr.Kind
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return domain.ErrorKindRateLimited
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrorKindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return domain.ErrorKindCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrorKindTimeout
	}
	return domain.ErrorKindService
}

// WrapError converts err into a VendorCallError for vendor, classifying it
// when it is not one already.
func WrapError(vendor domain.Vendor, err error) error {
	if err == nil {
		return nil
	}
	var callErr *domain.VendorCallError
	if errors.As(err, &callErr) {
		return err
	}
	return domain.NewVendorCallError(vendor, ClassifyError(err), err)
}

// StatusError builds the VendorCallError for a failed HTTP exchange.
func StatusError(vendor domain.Vendor, status int, body []byte, retryAfter string) error {
	base := fmt.Errorf("%s API error (status %d): %s", vendor, status, truncate(string(body), 500))
	if status == http.StatusTooManyRequests {
		base = NewRateLimitError(vendor, base, ParseRetryAfterHeader(retryAfter))
	}
	return domain.NewVendorCallError(vendor, ClassifyHTTPStatus(status), base)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}
