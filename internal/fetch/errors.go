package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork is matched by every *NetworkError via errors.Is.
	ErrNetwork = errors.New("network error")

	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrHTTPStatus is wrapped by a *NetworkError for a non-2xx response.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrBodyTooLarge is returned when the body exceeds the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrOnionRequiresTor is returned for .onion URLs fetched without Tor.
	ErrOnionRequiresTor = errors.New(".onion URLs require --tor or --proxy")

	// ErrUnsupportedCharset is returned when a charset name is not known.
	ErrUnsupportedCharset = errors.New("unsupported charset")
)

// NetworkError describes a failed fetch.
type NetworkError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
