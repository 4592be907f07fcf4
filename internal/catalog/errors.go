package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when an id is not in the loaded collection.
	ErrProductNotFound = errors.New("product not found in collection")
	// ErrStaleResponse is returned by Load when a newer load was applied
	// while this one was in flight. Its result is discarded.
	ErrStaleResponse = errors.New("load superseded by a newer request")
)

// NetworkError reports a transport failure talking to the gateway.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError reports a non-2xx answer from the gateway.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway responded with status %d", e.Status)
	}
	return fmt.Sprintf("gateway responded with status %d: %s", e.Status, e.Message)
}

// RefreshError wraps a failed reload that followed a successful add or edit.
// The write itself went through.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("product saved but refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }
