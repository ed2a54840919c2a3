// Package detect provides object detection over single image frames.
package detect

import "fmt"

// Box is an axis-aligned bounding box in source-frame pixel coordinates.
type Box struct {
	X, Y float64 // Top-left corner
	W, H float64 // Width and height, always >= 0
}

// Detection is one recognized object instance in one frame.
// Immutable once produced.
type Detection struct {
	Class string  // Label from the model's class taxonomy
	Score float64 // Confidence (0-1)
	Box   Box
}

// Label returns the overlay label text, e.g. "person 87.3%".
func (d Detection) Label() string {
	return fmt.Sprintf("%s %.1f%%", d.Class, d.Score*100)
}

// Detector is the interface for object detection backends.
// Implementations are not reentrant; callers must not overlap Detect calls.
type Detector interface {
	// Detect finds objects in the JPEG-encoded frame.
	Detect(jpeg []byte) ([]Detection, error)

	// Close releases resources.
	Close() error
}
