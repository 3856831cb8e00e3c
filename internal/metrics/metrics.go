// Package metrics exposes pipeline counters on a Prometheus registry.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics. Hot-path counters are plain
// atomics exported through GaugeFuncs; per-category alert outcomes use
// labelled vectors.
type Metrics struct {
	// Frame flow counters
	FramesCaptured  atomic.Uint64
	StageIterations atomic.Uint64
	DetectorErrors  atomic.Uint64
	EncodeErrors    atomic.Uint64

	// Viewer tracking
	ActiveViewers atomic.Int64
	TotalViewers  atomic.Uint64

	// Alert outcome vectors
	AlertsAdmitted   *prometheus.CounterVec
	AlertsSuppressed *prometheus.CounterVec
	SinkErrors       *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AlertsAdmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surveillance_alerts_admitted_total",
			Help: "Alerts admitted by the gate, per category",
		}, []string{"category"}),
		AlertsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surveillance_alerts_suppressed_total",
			Help: "Alerts suppressed by the cooldown window, per category",
		}, []string{"category"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surveillance_sink_errors_total",
			Help: "Notifier/persistence failures, per sink",
		}, []string{"sink"}),
	}

	m.registerCollectors()
	return m
}

func (m *Metrics) registerCollectors() {
	m.registry.MustRegister(m.AlertsAdmitted, m.AlertsSuppressed, m.SinkErrors)

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "surveillance_frames_captured_total",
			Help: "Frames captured by the camera source",
		},
		func() float64 { return float64(m.FramesCaptured.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "surveillance_stage_iterations_total",
			Help: "Detection stage iterations completed",
		},
		func() float64 { return float64(m.StageIterations.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "surveillance_detector_errors_total",
			Help: "Detector invocations that returned an error",
		},
		func() float64 { return float64(m.DetectorErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "surveillance_encode_errors_total",
			Help: "JPEG encode failures while streaming",
		},
		func() float64 { return float64(m.EncodeErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "surveillance_active_viewers",
			Help: "Currently connected MJPEG viewers",
		},
		func() float64 { return float64(m.ActiveViewers.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "surveillance_total_viewers",
			Help: "MJPEG viewers connected since start",
		},
		func() float64 { return float64(m.TotalViewers.Load()) },
	))
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
