package vcstore

import (
	"errors"
	"fmt"
)

// Error taxonomy (spec.md §7). Each is a sentinel usable with errors.Is;
// translateError wraps a concrete cause so errors.Is/errors.As still reach it.
var (
	// ErrIO covers open/stat/ioctl/pread/pwrite failures, short reads or
	// writes, and alignment buffer allocation failures.
	ErrIO = errors.New("vcstore: io error")

	// ErrFormat covers a bad signature, unsupported version, dimension
	// mismatch, or size fields exceeding their bounds.
	ErrFormat = errors.New("vcstore: format error")

	// ErrNotFound indicates an operation referenced an unknown vector id.
	ErrNotFound = errors.New("vcstore: not found")

	// ErrInvalidArgument covers a vector/query length mismatch, metadata
	// too long at store time, or an unknown clustering strategy name.
	ErrInvalidArgument = errors.New("vcstore: invalid argument")

	// ErrState indicates an operation was issued while the store is closed.
	ErrState = errors.New("vcstore: invalid state")

	// ErrCapacity indicates the data region is exhausted: the next
	// allocation would exceed device_size (spec.md §4.6).
	ErrCapacity = errors.New("vcstore: capacity exhausted")
)

// wrap attaches one of the taxonomy sentinels to a formatted message.
func wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// wrapCause attaches a sentinel and a message while keeping cause
// reachable via errors.Is/errors.As. The result wraps two errors, so
// errors.Unwrap on it returns nil.
func wrapCause(sentinel error, cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", sentinel, fmt.Sprintf(format, args...), cause)
}

// DimensionError reports a vector or query whose length didn't match the
// store's configured dimensionality.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionError) Unwrap() error { return ErrInvalidArgument }

// translateError is the last-resort safety net at the public API
// boundary: every error returned by a public operation must belong to one
// taxonomy bucket. Call sites wrap internal errors with the correct
// sentinel as they occur (via wrap/wrapCause); any error that reaches here
// unwrapped is assumed to be an I/O failure from the device layer, the
// most common source of un-categorized errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrIO) || errors.Is(err, ErrFormat) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrState) || errors.Is(err, ErrCapacity) {
		return err
	}
	return wrapCause(ErrIO, err, "unclassified error")
}
