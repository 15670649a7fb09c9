package catalog

import (
	"fmt"
)

// HTTPError reports a response whose status is not 2xx.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Failed to load inventory (%d)", e.Status)
}

// TransportError reports a request that never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "catalog: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a body that is not JSON or does not match the envelope shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "catalog: parse response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
