package pipeline

import (
	"fmt"
	"strings"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/alert"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/overlay"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// weaponBody flags detections whose label is in the configured weapon
// vocabulary and whose confidence clears the minimum. First qualifying
// detection wins; a minimum box area, when set, suppresses tiny noise
// boxes.
type weaponBody struct {
	labels  map[string]struct{}
	minConf float64
	minArea int
}

func newWeaponBody(labels []string, minConf float64, minArea int) *weaponBody {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[strings.ToLower(l)] = struct{}{}
	}
	return &weaponBody{labels: set, minConf: minConf, minArea: minArea}
}

// qualifies reports whether one detection meets the weapon alert condition.
func (b *weaponBody) qualifies(det types.Detection) bool {
	if _, ok := b.labels[strings.ToLower(det.Label)]; !ok {
		return false
	}
	if det.Confidence < b.minConf {
		return false
	}
	if b.minArea > 0 && det.Area() < b.minArea {
		return false
	}
	return true
}

func (b *weaponBody) process(frame *types.Frame, detections []types.Detection) *alert.Event {
	img := frame.RGBA()

	var event *alert.Event
	for _, det := range detections {
		hit := b.qualifies(det)

		color := overlay.Yellow
		if hit {
			color = overlay.Red
		}
		overlay.Box(img, det.Box, fmt.Sprintf("%s %.2f", det.Label, det.Confidence), color)

		if hit && event == nil {
			name := strings.ToLower(det.Label)
			event = &alert.Event{
				Category:   types.CategoryWeapon,
				SubType:    name,
				Confidence: det.Confidence,
				Message:    fmt.Sprintf("UNSAFE: %s (%.2f)", name, det.Confidence),
			}
		}
	}

	return event
}
