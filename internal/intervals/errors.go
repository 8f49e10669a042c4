package intervals

import (
	"errors"
	"fmt"
)

// HTTPError represents a non-2xx response from the bridge API
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("intervals API error (status %d): %s", e.StatusCode, e.Body)
}

// IsNotFound returns true if the error is a 404 HTTP error
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == 404
}

// IsUnauthorized returns true if the error is a 401 or 403 HTTP error
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && (httpErr.StatusCode == 401 || httpErr.StatusCode == 403)
}
