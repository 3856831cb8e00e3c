// Package webcam provides a camera.Device backed by a local capture device
// through gocv. Kept in its own package so the cgo dependency stays out of
// the pipeline and its tests.
package webcam

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Device reads frames from a V4L2/DirectShow capture index.
type Device struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// Open opens the capture device at the given index. Failure here aborts
// system activation.
func Open(index int) (*Device, error) {
	capture, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("cannot open camera index %d: %w", index, err)
	}
	if !capture.IsOpened() {
		_ = capture.Close()
		return nil, fmt.Errorf("cannot open camera index %d", index)
	}

	return &Device{
		capture: capture,
		mat:     gocv.NewMat(),
	}, nil
}

// Grab captures one frame and converts it to an image.Image.
func (d *Device) Grab() (image.Image, error) {
	if ok := d.capture.Read(&d.mat); !ok {
		return nil, fmt.Errorf("capture device returned no frame")
	}
	if d.mat.Empty() {
		return nil, nil
	}

	img, err := d.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, nil
}

// Close releases the capture device.
func (d *Device) Close() error {
	if err := d.mat.Close(); err != nil {
		return err
	}
	return d.capture.Close()
}
