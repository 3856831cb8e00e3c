// Package camera owns the physical capture device. A background loop
// continuously refreshes a cached latest frame; readers never block on the
// device and never see more than one frame of staleness.
package camera

import (
	"fmt"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/logger"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// Device is a single physical or simulated capture device. Grab blocks for
// at most one frame time and returns the captured image.
type Device interface {
	Grab() (image.Image, error)
	Close() error
}

// Source wraps a Device with a refresh loop and a non-blocking Read.
type Source struct {
	device   Device
	interval time.Duration
	log      *zap.SugaredLogger

	mu      sync.Mutex
	latest  *types.Frame
	started bool
	stop    chan struct{}
	done    chan struct{}
	onFrame func()

	frameNum uint64
}

// NewSource creates a source over the given device. The device must already
// be open; a failed device open is a fatal activation error and belongs to
// the caller.
func NewSource(device Device, interval time.Duration) *Source {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	return &Source{
		device:   device,
		interval: interval,
		log:      logger.Named("camera"),
	}
}

// OnFrame registers a callback invoked after each successful capture.
// Must be set before Start.
func (s *Source) OnFrame(fn func()) {
	s.mu.Lock()
	s.onFrame = fn
	s.mu.Unlock()
}

// Start begins the background refresh loop. Starting an already started
// source is a no-op.
func (s *Source) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.refresh(s.stop, s.done)
}

func (s *Source) refresh(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			img, err := s.device.Grab()
			if err != nil {
				s.log.Warnw("frame grab failed", "error", err)
				continue
			}
			if img == nil {
				continue
			}

			s.mu.Lock()
			s.frameNum++
			s.latest = &types.Frame{
				Image:     img,
				Timestamp: time.Now(),
				Number:    s.frameNum,
			}
			onFrame := s.onFrame
			s.mu.Unlock()

			if onFrame != nil {
				onFrame()
			}
		}
	}
}

// Read returns the most recently captured frame. ok is false before the
// first successful capture. Read never blocks on the device.
func (s *Source) Read() (*types.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return nil, false
	}
	return s.latest, true
}

// Stop halts the refresh loop and releases the device.
func (s *Source) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done

	if err := s.device.Close(); err != nil {
		return fmt.Errorf("failed to release capture device: %w", err)
	}
	return nil
}
