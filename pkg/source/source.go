// Package source produces frames from live capture devices and decoded
// image or video files behind a single data model.
package source

import "fmt"

// Source delivers a stream of frames. Live sources block until the
// next frame is available; file sources return io.EOF at end of stream.
type Source interface {
	// Next returns the next available frame.
	Next() (*Frame, error)

	// Close releases the underlying device or decoder.
	Close() error
}

// DeviceError indicates a capture device could not be opened or read.
// The live attempt fails; the user may retry.
type DeviceError struct {
	Device string
	Err    error
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("source [%s]: device unavailable: %v", e.Device, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// DecodeError indicates a file could not be decoded. The batch item is
// skipped; processing continues with subsequent items.
type DecodeError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("source [%s]: decode: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
