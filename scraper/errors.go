package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Fetch error categories, also used as the error_type metric label.
const (
	KindTimeout     = "timeout"
	KindConnection  = "connection"
	KindForbidden   = "forbidden"
	KindNotFound    = "not_found"
	KindRateLimited = "rate_limited"
	KindHTTPStatus  = "http_status"
	KindOther       = "other"
)

// FetchError describes why a page produced no content.
type FetchError struct {
	URL        string
	Kind       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: GET %s: status %d", e.Kind, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: GET %s: %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// errorTypeLabel returns the category of err, "unknown" for nil.
func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind
	}
	return KindOther
}

func classifyError(url string, err error, statusCode int) *FetchError {
	if err == nil && statusCode == 0 {
		return nil
	}

	fe := &FetchError{URL: url, StatusCode: statusCode, Err: err}
	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fe.Kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		fe.Kind = KindTimeout
	case errors.As(err, &opErr):
		fe.Kind = KindConnection
	case err != nil:
		fe.Kind = KindOther
	case statusCode == http.StatusForbidden:
		fe.Kind = KindForbidden
	case statusCode == http.StatusNotFound:
		fe.Kind = KindNotFound
	case statusCode == http.StatusTooManyRequests:
		fe.Kind = KindRateLimited
	default:
		fe.Kind = KindHTTPStatus
	}
	return fe
}
