package services

import (
	"errors"
	"fmt"
)

// ErrRadioOff is returned by Begin when the live radio is off.
var ErrRadioOff = errors.New("radio is off")

// StartError reports a sub-service that failed to start.
type StartError struct {
	Service  string // Sub-service name
	Critical bool   // Whether the failure makes Begin report false
	Err      error  // Underlying error
}

// Error implements the error interface
func (e *StartError) Error() string {
	kind := "soft"
	if e.Critical {
		kind = "critical"
	}
	return fmt.Sprintf("%s failed to start (%s): %v", e.Service, kind, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *StartError) Unwrap() error {
	return e.Err
}

// StartFailures returns every StartError joined into err.
func StartFailures(err error) []*StartError {
	if err == nil {
		return nil
	}

	var out []*StartError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, StartFailures(e)...)
		}
		return out
	}

	var se *StartError
	if errors.As(err, &se) {
		out = append(out, se)
	}
	return out
}
