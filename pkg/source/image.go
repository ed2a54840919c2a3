package source

import (
	"bytes"
	"image"

	// Register the decoders for common upload formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// DecodeImage decodes an uploaded image file into a single frame.
// Malformed files are reported as *DecodeError.
func DecodeImage(name string, data []byte) (*Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}
	return FromImage(img), nil
}
