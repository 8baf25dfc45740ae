package websearch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// HTTPError is a non-200 answer from a fetched page or the search endpoint.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Failure classes used as log fields and metric labels.
const (
	ClassTimeout = "timeout"
	ClassClient  = "http_4xx"
	ClassServer  = "http_5xx"
	ClassNetwork = "network"
	ClassOther   = "other"
)

// Classify buckets a fetch or search error.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode >= 500 {
			return ClassServer
		}
		return ClassClient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ClassTimeout
		}
		return ClassNetwork
	}
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") {
		return ClassNetwork
	}
	return ClassOther
}
