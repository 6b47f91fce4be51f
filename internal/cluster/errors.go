package cluster

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common registry failure scenarios.
// These errors can be checked using errors.Is() for programmatic error handling.
var (
	// ErrClusterNotFound indicates that an explicitly requested cluster
	// does not exist in the registry configuration.
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrAmbiguousSelection indicates that a resource name matched the
	// patterns of more than one cluster. This is a configuration bug on
	// the caller's side and is never silently resolved.
	ErrAmbiguousSelection = errors.New("ambiguous cluster selection")

	// ErrConnectionFailed indicates that building an API client for a
	// cluster failed, typically due to a network, TLS, or credential
	// problem.
	ErrConnectionFailed = errors.New("failed to connect to cluster")

	// ErrRegistryClosed indicates that the Registry has been closed and
	// can no longer be used.
	ErrRegistryClosed = errors.New("cluster registry is closed")
)

// ClusterNotFoundError provides context about a cluster lookup failure.
type ClusterNotFoundError struct {
	ClusterName string
}

// Error implements the error interface.
func (e *ClusterNotFoundError) Error() string {
	return fmt.Sprintf("cluster %q not found", e.ClusterName)
}

// Unwrap returns the underlying sentinel error for use with errors.Is().
func (e *ClusterNotFoundError) Unwrap() error {
	return ErrClusterNotFound
}

// AmbiguousSelectionError is returned when a resource name matches the
// patterns of multiple clusters. Candidates lists every matching
// cluster so the caller (or a human) can add an explicit cluster
// argument or fix the pattern overlap.
type AmbiguousSelectionError struct {
	ResourceName string
	Candidates   []string
}

// Error implements the error interface.
func (e *AmbiguousSelectionError) Error() string {
	return fmt.Sprintf(
		"ambiguous cluster selection for %q: candidates: %s; specify the cluster explicitly",
		e.ResourceName, strings.Join(e.Candidates, ", "),
	)
}

// Unwrap returns the underlying sentinel error for use with errors.Is().
func (e *AmbiguousSelectionError) Unwrap() error {
	return ErrAmbiguousSelection
}

// ConnectionError wraps a client construction failure with the cluster
// it belongs to.
//
// # Error Matching Semantics
//
//   - Is() matches ErrConnectionFailed, so callers can classify the
//     failure without knowing the cause.
//   - Unwrap() returns the underlying cause, so errors.Is() also
//     matches against the root error (e.g. context.DeadlineExceeded).
type ConnectionError struct {
	ClusterName string
	Err         error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to cluster %q: %v", e.ClusterName, e.Err)
}

// Is reports whether this error matches the ErrConnectionFailed sentinel.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}

// Unwrap returns the underlying cause.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}
