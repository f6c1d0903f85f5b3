package analytics

import (
	"context"
	"errors"
	"fmt"
)

// Condition errors for analytics calls. Match with errors.Is. Insufficient
// data is deliberately absent: too-few-samples is reported through nil or
// low-confidence fields on the result, never as a failure.
var (
	// ErrNotFound means the referenced user/card/deck/session has no data
	// at all. Callers render an empty state.
	ErrNotFound = errors.New("no data found")

	// ErrRangeTooLarge means the requested window exceeds the adapter's row
	// cap; the caller should narrow the window.
	ErrRangeTooLarge = errors.New("requested range too large")

	// ErrTimeout means the deadline expired before the computation finished.
	// Retryable.
	ErrTimeout = errors.New("analytics call timed out")

	// ErrStoreUnavailable means the event store could not be reached. Fatal
	// for the single call; never retried internally.
	ErrStoreUnavailable = errors.New("event store unavailable")
)

// TranslateStoreErr maps low-level query failures onto the condition
// taxonomy. Context expiry becomes Timeout; anything else from the driver
// becomes StoreUnavailable.
func TranslateStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRangeTooLarge) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTimeout) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
