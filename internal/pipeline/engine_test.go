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
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/config"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/framestore"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/gallery"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

type fakeDevice struct {
	mu     sync.Mutex
	closed bool
}

func (d *fakeDevice) Grab() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 64, 48)), nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *fakeDevice) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type fakeLoader struct {
	err   error
	loads int
}

func (l *fakeLoader) Load(ctx context.Context) (Detectors, *gallery.Gallery, error) {
	l.loads++
	if l.err != nil {
		return Detectors{}, nil, l.err
	}

	empty := types.DetectorFunc(func(ctx context.Context, frame *types.Frame) ([]types.Detection, error) {
		return nil, nil
	})
	detectors := Detectors{Crowd: empty, Weapon: empty, Identity: empty}
	return detectors, gallery.New(nil, 0.45), nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.CaptureInterval = time.Millisecond
	cfg.StageInterval = time.Millisecond
	return cfg
}

func newTestEngine(loader Loader, device *fakeDevice) (*Engine, *framestore.Store) {
	store := framestore.New()
	gate := alert.NewGate(12*time.Second, "Camera 1", nil, nil, nil)
	open := func() (camera.Device, error) { return device, nil }
	return NewEngine(testConfig(), loader, open, store, gate, nil), store
}

func TestStartDetectionIsIdempotent(t *testing.T) {
	device := &fakeDevice{}
	engine, _ := newTestEngine(&fakeLoader{}, device)
	defer engine.Stop()

	started, err := engine.StartDetection(context.Background())
	require.NoError(t, err)
	require.True(t, started)
	require.True(t, engine.Active())
	require.Equal(t, 3, engine.WorkerCount())

	started, err = engine.StartDetection(context.Background())
	require.NoError(t, err)
	require.False(t, started, "second activation must be a no-op")
	require.Equal(t, 3, engine.WorkerCount(), "no duplicate workers after repeated activation")
}

func TestStartDetectionLoaderFailureLeavesEngineInactive(t *testing.T) {
	device := &fakeDevice{}
	engine, _ := newTestEngine(&fakeLoader{err: errors.New("model file missing")}, device)

	started, err := engine.StartDetection(context.Background())
	require.Error(t, err)
	require.False(t, started)
	require.False(t, engine.Active())
	require.Equal(t, 0, engine.WorkerCount())
	require.False(t, device.isClosed(), "device is never opened when loading fails")

	// A later activation with a healthy loader must succeed.
	engine.loader = &fakeLoader{}
	started, err = engine.StartDetection(context.Background())
	require.NoError(t, err)
	require.True(t, started)
	require.NoError(t, engine.Stop())
}

func TestStartDetectionDeviceFailure(t *testing.T) {
	store := framestore.New()
	gate := alert.NewGate(12*time.Second, "Camera 1", nil, nil, nil)
	open := func() (camera.Device, error) { return nil, errors.New("no such device") }
	engine := NewEngine(testConfig(), &fakeLoader{}, open, store, gate, nil)

	started, err := engine.StartDetection(context.Background())
	require.Error(t, err)
	require.False(t, started)
	require.False(t, engine.Active())
}

func TestStopReleasesDevice(t *testing.T) {
	device := &fakeDevice{}
	engine, _ := newTestEngine(&fakeLoader{}, device)

	_, err := engine.StartDetection(context.Background())
	require.NoError(t, err)

	require.NoError(t, engine.Stop())
	require.False(t, engine.Active())
	require.Equal(t, 0, engine.WorkerCount())
	require.True(t, device.isClosed())

	require.NoError(t, engine.Stop(), "stopping an inactive engine is a no-op")
}

func TestStagesPublishAllKeys(t *testing.T) {
	device := &fakeDevice{}
	engine, store := newTestEngine(&fakeLoader{}, device)
	defer engine.Stop()

	_, err := engine.StartDetection(context.Background())
	require.NoError(t, err)

	keys := []framestore.Key{framestore.KeyCrowd, framestore.KeyWeapon, framestore.KeyFinal}
	deadline := time.After(2 * time.Second)
	for _, key := range keys {
		for store.Get(key) == nil {
			select {
			case <-deadline:
				t.Fatalf("no frame published for key %v", key)
			case <-time.After(5 * time.Millisecond):
			}
		}
	}
}

func TestStatusSurface(t *testing.T) {
	device := &fakeDevice{}
	engine, _ := newTestEngine(&fakeLoader{}, device)

	status := engine.Status()
	require.Equal(t, "0", status.CrowdCount)
	require.Equal(t, "Safe", status.WeaponStatus)
	require.Equal(t, "Safe", status.ViolenceStatus)
	require.False(t, status.SystemActive)
}
