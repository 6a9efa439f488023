package services

import (
	"errors"
	"fmt"
)

var (
	// ErrGraphUnavailable rejects writes that genuinely require the graph
	// while its status is not healthy.
	ErrGraphUnavailable = errors.New("graph store is not available")

	// ErrRoleNotFound is returned by role lookups on both read paths.
	ErrRoleNotFound = errors.New("role not found")
)

// GraphUnavailableError wraps ErrGraphUnavailable with the status that caused
// the rejection.
type GraphUnavailableError struct {
	Status Status
}

func (e *GraphUnavailableError) Error() string {
	return fmt.Sprintf("graph store is not available (status=%s)", e.Status)
}

func (e *GraphUnavailableError) Unwrap() error { return ErrGraphUnavailable }

// PartialMirrorError reports an adjacency pair that could not be fully
// applied after retrying: the pair is surfaced as a whole failure, never as a
// half-applied success.
type PartialMirrorError struct {
	RoleA string
	RoleB string
	Cause error
}

func (e *PartialMirrorError) Error() string {
	return fmt.Sprintf("adjacency mirror %s<->%s could not be fully applied: %v", e.RoleA, e.RoleB, e.Cause)
}

func (e *PartialMirrorError) Unwrap() error { return e.Cause }

func (e *PartialMirrorError) Reason() string {
	return fmt.Sprintf("PartialMirrorFailure:%s<->%s", e.RoleA, e.RoleB)
}
