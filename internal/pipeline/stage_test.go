package pipeline

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/alert"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/camera"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/framestore"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

type countingDetector struct {
	mu     sync.Mutex
	calls  int
	result []types.Detection
	err    error
}

func (d *countingDetector) Detect(ctx context.Context, frame *types.Frame) ([]types.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.result, d.err
}

func (d *countingDetector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func startedSource(t *testing.T) *camera.Source {
	t.Helper()
	source := camera.NewSource(&fakeDevice{}, time.Millisecond)
	source.Start()
	t.Cleanup(func() { _ = source.Stop() })

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := source.Read(); ok {
			return source
		}
		select {
		case <-deadline:
			t.Fatal("source produced no frame")
		case <-time.After(time.Millisecond):
		}
	}
}

func newTestStage(t *testing.T, every int, detector types.Detector, b body) (*Stage, *framestore.Store) {
	store := framestore.New()
	deps := stageDeps{
		store:    store,
		source:   startedSource(t),
		gate:     alert.NewGate(12*time.Second, "Camera 1", nil, nil, nil),
		interval: time.Millisecond,
	}
	return newStage("weapon", framestore.KeyWeapon, nil, every, detector, b, deps), store
}

func TestStageDetectorErrorPublishesPassthrough(t *testing.T) {
	detector := &countingDetector{err: errors.New("inference server down")}
	stage, store := newTestStage(t, 1, detector, newWeaponBody([]string{"gun"}, 0.75, 0))

	stage.iterate(context.Background())

	require.Equal(t, 1, detector.callCount())
	require.NotNil(t, store.Get(framestore.KeyWeapon),
		"a failed detection still publishes the frame so viewers keep getting video")
}

func TestStageEveryNthSkipsDetector(t *testing.T) {
	detector := &countingDetector{}
	stage, store := newTestStage(t, 2, detector, newWeaponBody([]string{"gun"}, 0.75, 0))

	stage.iterate(context.Background())
	require.Equal(t, 0, detector.callCount(), "off-cycle iteration must not run the detector")
	require.NotNil(t, store.Get(framestore.KeyWeapon), "off-cycle iteration still publishes")

	stage.iterate(context.Background())
	require.Equal(t, 1, detector.callCount())

	stage.iterate(context.Background())
	require.Equal(t, 1, detector.callCount())

	stage.iterate(context.Background())
	require.Equal(t, 2, detector.callCount())
}

func TestStageOffersQualifyingEvent(t *testing.T) {
	detector := &countingDetector{result: []types.Detection{
		{Label: "gun", Confidence: 0.90, Box: image.Rect(0, 0, 20, 20), TrackID: -1},
	}}
	gate := alert.NewGate(12*time.Second, "Camera 1", nil, nil, nil)
	store := framestore.New()
	deps := stageDeps{
		store:    store,
		source:   startedSource(t),
		gate:     gate,
		interval: time.Millisecond,
	}
	stage := newStage("weapon", framestore.KeyWeapon, nil, 1,
		detector, newWeaponBody([]string{"gun"}, 0.75, 0), deps)

	stage.iterate(context.Background())
	gate.Flush()

	_, weapon, _ := gate.Status()
	require.Equal(t, "UNSAFE: gun (0.90)", weapon)
}

func TestStagePrefersUpstreamFrame(t *testing.T) {
	detector := &countingDetector{}
	store := framestore.New()
	upstreamFrame := &types.Frame{
		Image:     image.NewRGBA(image.Rect(0, 0, 10, 10)),
		Timestamp: time.Now(),
		Number:    999,
	}
	store.Publish(framestore.KeyCrowd, upstreamFrame)

	deps := stageDeps{
		store:    store,
		source:   startedSource(t),
		gate:     alert.NewGate(12*time.Second, "Camera 1", nil, nil, nil),
		interval: time.Millisecond,
	}
	stage := newStage("weapon", framestore.KeyWeapon, []framestore.Key{framestore.KeyCrowd}, 1,
		detector, newWeaponBody([]string{"gun"}, 0.75, 0), deps)

	stage.iterate(context.Background())

	published := store.Get(framestore.KeyWeapon)
	require.NotNil(t, published)
	require.Equal(t, uint64(999), published.Number, "stage must consume the upstream frame when present")
}
