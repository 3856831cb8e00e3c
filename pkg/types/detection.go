package types

import (
	"context"
	"image"
)

// Category identifies one detection pipeline stage.
type Category string

const (
	CategoryCrowd    Category = "Crowd"
	CategoryWeapon   Category = "Weapon"
	CategoryIdentity Category = "Identity"
)

// Detection is a single detector result. TrackID is -1 when the detector
// does not track objects across frames. Encoding is only populated by face
// detectors and carries the embedding used for gallery matching.
type Detection struct {
	Label      string
	Confidence float64
	Box        image.Rectangle
	TrackID    int
	Encoding   []float64
}

// Area returns the bounding-box area in pixels.
func (d Detection) Area() int {
	return d.Box.Dx() * d.Box.Dy()
}

// Detector is the opaque inference capability consumed by the pipeline.
// Implementations run whatever model they like; the pipeline only cares
// about the returned detections. A slow Detect call stalls its own stage
// and nothing else.
type Detector interface {
	Detect(ctx context.Context, frame *Frame) ([]Detection, error)
}

// DetectorFunc adapts a plain function to the Detector interface.
type DetectorFunc func(ctx context.Context, frame *Frame) ([]Detection, error)

// Detect implements Detector.
func (f DetectorFunc) Detect(ctx context.Context, frame *Frame) ([]Detection, error) {
	return f(ctx, frame)
}
