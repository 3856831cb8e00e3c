package types

import (
	"image"
	"image/draw"
	"time"
)

// Frame is one captured image plus its capture metadata. Frames are
// ephemeral: producers overwrite them continuously and only the latest
// instance matters. Once a frame is published to the frame store it must
// not be mutated; stages clone before drawing.
type Frame struct {
	Image     image.Image
	Timestamp time.Time
	Number    uint64
}

// Clone returns a deep copy of the frame with an RGBA pixel buffer, safe
// for in-place annotation.
func (f *Frame) Clone() *Frame {
	if f == nil || f.Image == nil {
		return nil
	}

	bounds := f.Image.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, f.Image, bounds.Min, draw.Src)

	return &Frame{
		Image:     dst,
		Timestamp: f.Timestamp,
		Number:    f.Number,
	}
}

// RGBA returns the frame's pixel buffer as *image.RGBA, converting when the
// underlying image uses a different color model.
func (f *Frame) RGBA() *image.RGBA {
	if rgba, ok := f.Image.(*image.RGBA); ok {
		return rgba
	}

	bounds := f.Image.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, f.Image, bounds.Min, draw.Src)
	return dst
}
