// Package pipeline runs the detection stages and the engine that owns
// their lifecycle. Each stage is an independent worker: it pulls the best
// available upstream frame, runs its detector, annotates, evaluates alert
// conditions and publishes into the frame store under its own key. Stages
// sample the latest frame at their own cadence; consecutive stages are not
// guaranteed to see the same capture.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/alert"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/camera"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/framestore"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/logger"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/metrics"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// body holds the category-specific half of a stage: annotation and alert
// evaluation. The frame passed in is the stage's private clone with an
// RGBA buffer; bodies draw on it in place and return the candidate event,
// if any.
type body interface {
	process(frame *types.Frame, detections []types.Detection) *alert.Event
}

// Stage is one detection worker.
type Stage struct {
	name     string
	key      framestore.Key
	upstream []framestore.Key
	every    int

	detector types.Detector
	body     body

	store    *framestore.Store
	source   *camera.Source
	gate     *alert.Gate
	interval time.Duration
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger

	iteration uint64
}

func newStage(name string, key framestore.Key, upstream []framestore.Key, every int,
	detector types.Detector, b body, deps stageDeps) *Stage {
	if every < 1 {
		every = 1
	}
	return &Stage{
		name:     name,
		key:      key,
		upstream: upstream,
		every:    every,
		detector: detector,
		body:     b,
		store:    deps.store,
		source:   deps.source,
		gate:     deps.gate,
		interval: deps.interval,
		metrics:  deps.metrics,
		log:      logger.Named("stage." + name),
	}
}

type stageDeps struct {
	store    *framestore.Store
	source   *camera.Source
	gate     *alert.Gate
	interval time.Duration
	metrics  *metrics.Metrics
}

// Run loops until the context is cancelled. Every iteration yields briefly
// to bound CPU usage; a slow detector call stalls only this stage.
func (s *Stage) Run(ctx context.Context) {
	s.log.Infow("stage started", "key", s.key.String())
	defer s.log.Infow("stage stopped", "key", s.key.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s.iterate(ctx)
	}
}

// acquire reads the configured upstream keys first, falling back to the
// camera source, so the stage degrades gracefully before upstream stages
// have produced anything.
func (s *Stage) acquire() *types.Frame {
	if len(s.upstream) > 0 {
		if frame := s.store.GetWithFallback(s.upstream...); frame != nil {
			return frame
		}
	}
	if frame, ok := s.source.Read(); ok {
		return frame
	}
	return nil
}

func (s *Stage) iterate(ctx context.Context) {
	frame := s.acquire()
	if frame == nil {
		return
	}

	work := frame.Clone()

	s.iteration++
	if s.iteration%uint64(s.every) != 0 {
		// Off-cycle iteration: pass the frame through untouched.
		s.store.Publish(s.key, work)
		return
	}

	detections, err := s.detector.Detect(ctx, frame)
	if err != nil {
		// Recoverable: publish the unannotated frame and retry next cycle.
		if s.metrics != nil {
			s.metrics.DetectorErrors.Add(1)
		}
		s.log.Warnw("detector failed", "error", err)
		s.store.Publish(s.key, work)
		return
	}

	event := s.body.process(work, detections)

	s.store.Publish(s.key, work)
	if event != nil {
		event.Frame = work
		s.gate.Offer(*event)
	}

	if s.metrics != nil {
		s.metrics.StageIterations.Add(1)
	}
}
