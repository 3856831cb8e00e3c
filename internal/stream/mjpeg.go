// Package stream serves live frames to any number of concurrent viewers.
// Each viewer gets its own loop over the frame store; viewers only read the
// store, so they never block each other or the producing stages.
package stream

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/framestore"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/logger"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/metrics"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// Multiplexer produces MJPEG streams from the frame store.
type Multiplexer struct {
	store    *framestore.Store
	interval time.Duration
	quality  int
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger
}

// NewMultiplexer creates a multiplexer pacing each viewer at interval.
func NewMultiplexer(store *framestore.Store, interval time.Duration, quality int, m *metrics.Metrics) *Multiplexer {
	if interval <= 0 {
		interval = 30 * time.Millisecond
	}
	if quality <= 0 {
		quality = 80
	}
	return &Multiplexer{
		store:    store,
		interval: interval,
		quality:  quality,
		metrics:  m,
		log:      logger.Named("stream"),
	}
}

// lookupChain is the requested key followed by the viewer fallback order,
// deduplicated.
func lookupChain(key framestore.Key) []framestore.Key {
	chain := []framestore.Key{key}
	for _, k := range framestore.ViewerFallback {
		if k != key {
			chain = append(chain, k)
		}
	}
	return chain
}

// ServeKey streams the requested stage key to one viewer until the viewer
// disconnects. The stream never terminates on its own: when no frame is
// available yet it idles and retries.
func (m *Multiplexer) ServeKey(w http.ResponseWriter, r *http.Request, key framestore.Key) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")

	if m.metrics != nil {
		m.metrics.ActiveViewers.Add(1)
		m.metrics.TotalViewers.Add(1)
		defer m.metrics.ActiveViewers.Add(-1)
	}

	chain := lookupChain(key)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame := m.store.GetWithFallback(chain...)
		if frame == nil {
			continue
		}

		data, err := encodeJPEG(frame, m.quality)
		if err != nil {
			if m.metrics != nil {
				m.metrics.EncodeErrors.Add(1)
			}
			m.log.Warnw("frame encode failed", "key", key.String(), "error", err)
			continue
		}

		if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\n\r\n"); err != nil {
			return
		}
		if _, err := w.Write(data); err != nil {
			return
		}
		if _, err := w.Write([]byte("\r\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}

func encodeJPEG(frame *types.Frame, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame.Image, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
