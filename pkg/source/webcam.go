package source

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Webcam captures frames from a local video device through OpenCV.
type Webcam struct {
	deviceID int
	cap      *gocv.VideoCapture
	mat      gocv.Mat
}

// OpenWebcam opens the capture device. Failure to open is a
// *DeviceError (permission denied, device busy, no such device).
func OpenWebcam(deviceID int) (*Webcam, error) {
	cap, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, &DeviceError{Device: fmt.Sprintf("webcam %d", deviceID), Err: err}
	}

	return &Webcam{
		deviceID: deviceID,
		cap:      cap,
		mat:      gocv.NewMat(),
	}, nil
}

// Next blocks until the device delivers the next frame.
func (w *Webcam) Next() (*Frame, error) {
	if !w.cap.Read(&w.mat) || w.mat.Empty() {
		return nil, &DeviceError{
			Device: fmt.Sprintf("webcam %d", w.deviceID),
			Err:    fmt.Errorf("cannot read frame"),
		}
	}

	img, err := w.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}

	return FromImage(img), nil
}

// Close releases the capture device.
func (w *Webcam) Close() error {
	w.mat.Close()
	return w.cap.Close()
}
