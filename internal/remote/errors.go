package remote

import (
	"errors"
	"fmt"
)

// Error is a failed request to a device.
type Error struct {
	Op string
	// StatusCode is set for HTTP status failures
	StatusCode int
	Err        error
	// Retryable is set when the request never reached the device's event loop
	Retryable bool
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status code %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
