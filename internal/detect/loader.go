package detect

import (
	"context"
	"fmt"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/gallery"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/pipeline"
)

// Loader builds the production collaborators: one HTTP detector per
// category plus the identity gallery from disk.
type Loader struct {
	BaseURL       string
	GalleryPath   string
	FaceTolerance float64
}

// Load implements pipeline.Loader.
func (l *Loader) Load(ctx context.Context) (pipeline.Detectors, *gallery.Gallery, error) {
	idGallery, err := gallery.Load(l.GalleryPath, l.FaceTolerance)
	if err != nil {
		return pipeline.Detectors{}, nil, fmt.Errorf("failed to load identity gallery: %w", err)
	}

	detectors := pipeline.Detectors{
		Crowd:    NewHTTPDetector(l.BaseURL, "crowd"),
		Weapon:   NewHTTPDetector(l.BaseURL, "weapon"),
		Identity: NewHTTPDetector(l.BaseURL, "face"),
	}
	return detectors, idGallery, nil
}
