package detect

import "fmt"

// InitError indicates the detection model failed to load. Starting a
// pipeline is blocked until a retry succeeds.
type InitError struct {
	Err error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("detect: provider init: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}
