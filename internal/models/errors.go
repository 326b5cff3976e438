package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for request validation.
var (
	ErrMissingCollection = errors.New("collection is required")
	ErrMissingStart      = errors.New("start is required")
	ErrMissingEnd        = errors.New("end is required")
	ErrMissingField      = errors.New("adjacency field is required")
	ErrMissingDocuments  = errors.New("documents are required")
)

// Sentinel errors for lookups.
var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrStartNotFound      = errors.New("start node not found")
	ErrCollectionNotFound = errors.New("collection not found")
)

// ErrInvalidArgument marks configuration errors detected before any store access.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidStageSpec marks a malformed graph lookup stage definition.
var ErrInvalidStageSpec = errors.New("invalid stage spec")

// ErrUnknownAlgorithm is returned for an unsupported search algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// ErrNegativeWeight is returned when a weighted search meets an edge with a negative weight.
var ErrNegativeWeight = errors.New("negative edge weight")

// ErrMemoryLimitExceeded aborts a search whose visited and frontier state outgrew the configured ceiling.
// It is fatal and never retried.
var ErrMemoryLimitExceeded = errors.New("search reached maximum memory consumption")

// ErrFieldTooLong returns an ErrInvalidArgument naming a field over its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%w: %s exceeds maximum length of %d", ErrInvalidArgument, field, maxLen)
}

// InvalidArgument wraps ErrInvalidArgument with a formatted message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
