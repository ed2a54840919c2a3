package source

import (
	"fmt"
	"io"
	"time"

	"gocv.io/x/gocv"
)

// DefaultVideoStep is the playback-time increment between decoded
// frames. Stepping by playback time instead of decoding every frame
// keeps processing time proportional to video length, not real-time
// playback.
const DefaultVideoStep = time.Second / 30

// VideoFile decodes a video file sequentially, advancing the playback
// position by a fixed step per frame.
type VideoFile struct {
	name string
	cap  *gocv.VideoCapture
	mat  gocv.Mat
	pos  time.Duration
	step time.Duration
}

// OpenVideo opens a video file for stepped decoding. A step of zero
// uses DefaultVideoStep.
func OpenVideo(path string, step time.Duration) (*VideoFile, error) {
	if step <= 0 {
		step = DefaultVideoStep
	}

	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, &DecodeError{Name: path, Err: err}
	}

	return &VideoFile{
		name: path,
		cap:  cap,
		mat:  gocv.NewMat(),
		step: step,
	}, nil
}

// Next decodes the frame at the current playback position and advances
// by the configured step. Returns io.EOF at end of stream.
func (v *VideoFile) Next() (*Frame, error) {
	v.cap.Set(gocv.VideoCapturePosMsec, float64(v.pos.Milliseconds()))

	if !v.cap.Read(&v.mat) || v.mat.Empty() {
		return nil, io.EOF
	}
	v.pos += v.step

	img, err := v.mat.ToImage()
	if err != nil {
		return nil, &DecodeError{Name: v.name, Err: fmt.Errorf("convert frame: %w", err)}
	}

	return FromImage(img), nil
}

// Close releases the decoder.
func (v *VideoFile) Close() error {
	v.mat.Close()
	return v.cap.Close()
}
