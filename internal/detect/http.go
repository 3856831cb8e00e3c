// Package detect provides the production Detector implementation: an HTTP
// client posting frames to a sidecar inference server. The models
// themselves (YOLO variants, face encoder) live behind that server; the
// pipeline only sees label/confidence/box results.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// wireDetection is the inference server's response element.
type wireDetection struct {
	Label      string `json:"label"`
	Confidence float64 `json:"confidence"`
	BBox       struct {
		X int `json:"x"`
		Y int `json:"y"`
		W int `json:"w"`
		H int `json:"h"`
	} `json:"bbox"`
	TrackID  *int      `json:"track_id"`
	Encoding []float64 `json:"encoding,omitempty"`
}

// HTTPDetector posts JPEG frames to <base>/detect/<model> and decodes the
// returned detections. Inference latency is unbounded by design: a slow
// model stalls only the stage that called it. Cancellation comes from the
// request context.
type HTTPDetector struct {
	baseURL string
	model   string
	quality int
	client  *http.Client
}

// NewHTTPDetector creates a detector for one named model.
func NewHTTPDetector(baseURL, model string) *HTTPDetector {
	return &HTTPDetector{
		baseURL: baseURL,
		model:   model,
		quality: 85,
		client:  &http.Client{},
	}
}

// Detect implements types.Detector.
func (d *HTTPDetector) Detect(ctx context.Context, frame *types.Frame) ([]types.Detection, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame.Image, &jpeg.Options{Quality: d.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	url := fmt.Sprintf("%s/detect/%s", d.baseURL, d.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference server returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var wire []wireDetection
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}

	detections := make([]types.Detection, 0, len(wire))
	for _, w := range wire {
		det := types.Detection{
			Label:      w.Label,
			Confidence: w.Confidence,
			Box:        image.Rect(w.BBox.X, w.BBox.Y, w.BBox.X+w.BBox.W, w.BBox.Y+w.BBox.H),
			TrackID:    -1,
			Encoding:   w.Encoding,
		}
		if w.TrackID != nil {
			det.TrackID = *w.TrackID
		}
		detections = append(detections, det)
	}
	return detections, nil
}
