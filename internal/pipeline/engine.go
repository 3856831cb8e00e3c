package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/alert"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/camera"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/config"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/framestore"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/gallery"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/logger"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/metrics"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// Detectors bundles the per-category detector instances.
type Detectors struct {
	Crowd    types.Detector
	Weapon   types.Detector
	Identity types.Detector
}

// Loader produces the external collaborators needed for activation. A load
// failure aborts activation entirely.
type Loader interface {
	Load(ctx context.Context) (Detectors, *gallery.Gallery, error)
}

// DeviceOpener opens the physical capture device. Failure here is fatal
// for activation.
type DeviceOpener func() (camera.Device, error)

// Engine owns the detection lifecycle: one frame source, three stages, the
// shared frame store and alert gate. All state is scoped to the engine
// instance; nothing is process-global.
type Engine struct {
	cfg        config.Config
	loader     Loader
	openDevice DeviceOpener
	store      *framestore.Store
	gate       *alert.Gate
	metrics    *metrics.Metrics
	log        *zap.SugaredLogger

	mu      sync.Mutex
	active  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	source  *camera.Source
	workers int
}

// NewEngine wires an engine over the shared collaborators.
func NewEngine(cfg config.Config, loader Loader, openDevice DeviceOpener,
	store *framestore.Store, gate *alert.Gate, m *metrics.Metrics) *Engine {
	return &Engine{
		cfg:        cfg,
		loader:     loader,
		openDevice: openDevice,
		store:      store,
		gate:       gate,
		metrics:    m,
		log:        logger.Named("engine"),
	}
}

// StartDetection performs one-time activation: load collaborators, start
// the frame source, spawn the three detection stages. Calling it while
// active is not an error; started reports false and nothing is spawned
// twice. Any load failure leaves the engine inactive with no workers
// running.
func (e *Engine) StartDetection(ctx context.Context) (started bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return false, nil
	}

	detectors, idGallery, err := e.loader.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load detection models: %w", err)
	}

	device, err := e.openDevice()
	if err != nil {
		return false, fmt.Errorf("failed to open camera: %w", err)
	}

	source := camera.NewSource(device, e.cfg.CaptureInterval)
	if e.metrics != nil {
		source.OnFrame(func() { e.metrics.FramesCaptured.Add(1) })
	}
	source.Start()

	runCtx, cancel := context.WithCancel(context.Background())
	e.source = source
	e.cancel = cancel
	e.active = true

	deps := stageDeps{
		store:    e.store,
		source:   source,
		gate:     e.gate,
		interval: e.cfg.StageInterval,
		metrics:  e.metrics,
	}

	stages := []*Stage{
		newStage("crowd", framestore.KeyCrowd, nil, 1,
			detectors.Crowd, &crowdBody{threshold: e.cfg.CrowdThreshold, gate: e.gate}, deps),
		newStage("weapon", framestore.KeyWeapon, []framestore.Key{framestore.KeyCrowd}, 1,
			detectors.Weapon, newWeaponBody(e.cfg.WeaponLabels, e.cfg.WeaponMinConf, e.cfg.WeaponMinArea), deps),
		newStage("identity", framestore.KeyFinal, []framestore.Key{framestore.KeyWeapon}, e.cfg.FaceFrameSkip,
			detectors.Identity, &identityBody{gallery: idGallery}, deps),
	}

	e.workers = len(stages)
	for _, stage := range stages {
		e.wg.Add(1)
		go func(s *Stage) {
			defer e.wg.Done()
			s.Run(runCtx)
		}(stage)
	}

	e.log.Infow("detection system running",
		"stages", len(stages),
		"gallery_size", idGallery.Size(),
		"cooldown", e.cfg.AlertCooldown,
	)
	return true, nil
}

// Stop cancels the stage workers, waits for them, and releases the camera.
// Safe to call when not active.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return nil
	}
	e.active = false
	cancel, source := e.cancel, e.source
	e.workers = 0
	e.mu.Unlock()

	cancel()
	e.wg.Wait()

	if err := source.Stop(); err != nil {
		return fmt.Errorf("failed to stop camera: %w", err)
	}
	return nil
}

// Active reports whether the detection system is running.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// WorkerCount returns the number of running stage workers.
func (e *Engine) WorkerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workers
}

// Status assembles the status surface served by /get_status.
func (e *Engine) Status() types.SystemStatus {
	crowdCount, weaponStatus, identityStatus := e.gate.Status()
	return types.SystemStatus{
		CrowdCount:     crowdCount,
		WeaponStatus:   weaponStatus,
		ViolenceStatus: identityStatus,
		SystemActive:   e.Active(),
	}
}
