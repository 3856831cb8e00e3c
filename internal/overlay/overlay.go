// Package overlay draws detection annotations (bounding boxes, labels,
// counters) onto RGBA frames.
package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

const lineWidth = 2

// Rect draws a rectangle outline clipped to the image bounds.
func Rect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}

	for w := 0; w < lineWidth; w++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setClipped(img, x, r.Min.Y+w, c)
			setClipped(img, x, r.Max.Y-1-w, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setClipped(img, r.Min.X+w, y, c)
			setClipped(img, r.Max.X-1-w, y, c)
		}
	}
}

// Label draws text with a filled background at (x, y), the top-left corner
// of the background box.
func Label(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil() + 8
	height := face.Metrics().Height.Ceil() + 4

	box := image.Rect(x, y, x+width, y+height).Intersect(img.Bounds())
	if box.Empty() {
		return
	}
	draw.Draw(img, box, &image.Uniform{C: bg}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: fg},
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x + 4),
			Y: fixed.I(y + face.Metrics().Ascent.Ceil() + 2),
		},
	}
	drawer.DrawString(text)
}

// Box draws a detection rectangle with its label above it, or below when the
// box touches the top edge.
func Box(img *image.RGBA, r image.Rectangle, text string, c color.RGBA) {
	Rect(img, r, c)
	if text == "" {
		return
	}

	labelY := r.Min.Y - 18
	if labelY < img.Bounds().Min.Y {
		labelY = r.Max.Y + 2
	}
	Label(img, r.Min.X, labelY, text, Black, c)
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}
