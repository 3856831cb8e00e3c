package pipeline

import (
	"fmt"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/alert"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/overlay"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// crowdBody counts unique tracked people per frame. The count deduplicates
// tracking identifiers, not raw boxes, so one person re-entering the frame
// does not inflate it.
type crowdBody struct {
	threshold int
	gate      *alert.Gate
}

// CountUniqueTracks returns the number of distinct non-negative track IDs.
// Detections without tracking information do not contribute.
func CountUniqueTracks(detections []types.Detection) int {
	seen := make(map[int]struct{}, len(detections))
	for _, det := range detections {
		if det.TrackID >= 0 {
			seen[det.TrackID] = struct{}{}
		}
	}
	return len(seen)
}

func (b *crowdBody) process(frame *types.Frame, detections []types.Detection) *alert.Event {
	img := frame.RGBA()

	count := CountUniqueTracks(detections)
	b.gate.SetCrowdCount(count)

	for _, det := range detections {
		label := det.Label
		if det.TrackID >= 0 {
			label = fmt.Sprintf("%s #%d", det.Label, det.TrackID)
		}
		overlay.Box(img, det.Box, label, overlay.Green)
	}
	overlay.Label(img, 10, 10, fmt.Sprintf("Count: %d", count), overlay.Green, overlay.Black)

	if count <= b.threshold {
		return nil
	}

	return &alert.Event{
		Category:    types.CategoryCrowd,
		PeopleCount: count,
		Message:     fmt.Sprintf("Crowd of %d exceeds limit of %d", count, b.threshold),
	}
}
