package pipeline

import (
	"fmt"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/alert"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/gallery"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/overlay"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// identityBody matches detected faces against the known-identity gallery.
// Unmatched faces are annotated as Unknown and never alert.
type identityBody struct {
	gallery *gallery.Gallery
}

func (b *identityBody) process(frame *types.Frame, detections []types.Detection) *alert.Event {
	img := frame.RGBA()

	var event *alert.Event
	for _, det := range detections {
		name, distance, matched := b.gallery.Match(det.Encoding)

		color := overlay.Red
		if matched {
			color = overlay.Green
		}
		overlay.Box(img, det.Box, name, color)

		if matched && event == nil {
			event = &alert.Event{
				Category:   types.CategoryIdentity,
				SubType:    name,
				PersonName: name,
				Confidence: 1 - distance,
				Message:    fmt.Sprintf("IDENTIFIED: %s", name),
			}
		}
	}

	return event
}
