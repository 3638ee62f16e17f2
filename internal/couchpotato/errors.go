package couchpotato

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrUnknownRequestType = errors.New("received unknown API request")
	ErrInvalidBaseURL     = errors.New("invalid couchpotato base URL")

	// Upstream errors
	ErrUpstreamUnreachable = errors.New("unable to connect to couchpotato")
	ErrInvalidResponse     = errors.New("invalid couchpotato response")
)

// UnreachableError reports a transport failure talking to CouchPotato.
// URL has the API key redacted.
type UnreachableError struct {
	URL string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("unable to connect to couchpotato at %s: %v", e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUpstreamUnreachable) hold.
func (e *UnreachableError) Is(target error) bool {
	return target == ErrUpstreamUnreachable
}

// ResponseError reports a non-2xx answer from CouchPotato.
type ResponseError struct {
	URL        string
	StatusCode int
	Detail     string
}

func (e *ResponseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("couchpotato at %s returned status %d: %s", e.URL, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("couchpotato at %s returned status %d", e.URL, e.StatusCode)
}

// Is makes errors.Is(err, ErrInvalidResponse) hold.
func (e *ResponseError) Is(target error) bool {
	return target == ErrInvalidResponse
}

// IsUpstreamError reports whether err came from talking to CouchPotato
// rather than from local configuration.
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstreamUnreachable) || errors.Is(err, ErrInvalidResponse)
}
