package source

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
	"time"
)

// Frame is a single decoded image buffer from a live stream or file.
// Frames are transient: the pipeline copies them into working buffers
// and never persists them.
type Frame struct {
	Image *image.RGBA
	Time  time.Time
}

// FromImage converts any image into a Frame, copying pixels into an
// RGBA buffer.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Frame{Image: rgba, Time: time.Now()}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	return f.Image.Bounds().Dx()
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	return f.Image.Bounds().Dy()
}

// Clone returns a deep copy of the frame for use as a working buffer.
func (f *Frame) Clone() *Frame {
	dst := image.NewRGBA(f.Image.Bounds())
	copy(dst.Pix, f.Image.Pix)
	return &Frame{Image: dst, Time: f.Time}
}

// JPEG encodes the frame as a JPEG byte stream.
func (f *Frame) JPEG() ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.Image, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
