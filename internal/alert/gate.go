// Package alert decides which detection candidates become real alerts.
// Admission is governed by a per-category cooldown window: at most one
// admitted alert per category per window, no matter how many candidates the
// stages produce. Side effects (notification, persistence) are fired
// asynchronously and never block or fail the pipeline.
package alert

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/logger"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/metrics"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/notify"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// Recorder is the persistence collaborator handed admitted alert records.
type Recorder interface {
	Insert(rec *types.AlertRecord) error
}

// Event is one alert candidate proposed by a detection stage.
type Event struct {
	Category    types.Category
	SubType     string
	Confidence  float64
	PeopleCount int
	PersonName  string
	Message     string
	Frame       *types.Frame
}

type cooldown struct {
	lastFire time.Time
	status   string
}

const statusSafe = "Safe"

// Gate tracks cooldown state and the human-readable system status. All
// category state lives under one lock so that a status read and a
// concurrent admission can never interleave inconsistently; the
// check-and-set inside Offer is atomic, which makes the at-most-one
// admission invariant hold even when several stages offer the same
// category at once.
type Gate struct {
	window   time.Duration
	location string
	now      func() time.Time

	notifier notify.Notifier
	recorder Recorder
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger

	mu         sync.Mutex
	states     map[types.Category]*cooldown
	crowdCount int

	sideEffects sync.WaitGroup
}

// NewGate creates a gate with the given cooldown window. Notifier and
// recorder may be nil; the corresponding side effect is skipped.
func NewGate(window time.Duration, location string, notifier notify.Notifier, recorder Recorder, m *metrics.Metrics) *Gate {
	return &Gate{
		window:   window,
		location: location,
		now:      time.Now,
		notifier: notifier,
		recorder: recorder,
		metrics:  m,
		log:      logger.Named("alert"),
		states:   make(map[types.Category]*cooldown),
	}
}

// SetClock replaces the time source. Test hook.
func (g *Gate) SetClock(now func() time.Time) {
	g.now = now
}

// Offer submits a candidate. It returns true when the candidate is admitted:
// the category's cooldown restarts, the status text updates and the external
// sinks are invoked. A candidate inside the window is suppressed.
func (g *Gate) Offer(ev Event) bool {
	g.mu.Lock()

	now := g.now()
	st := g.state(ev.Category)
	if !st.lastFire.IsZero() && now.Sub(st.lastFire) < g.window {
		g.mu.Unlock()
		if g.metrics != nil {
			g.metrics.AlertsSuppressed.WithLabelValues(string(ev.Category)).Inc()
		}
		return false
	}

	st.lastFire = now
	st.status = ev.Message
	record := g.buildRecordLocked(ev, now)
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.AlertsAdmitted.WithLabelValues(string(ev.Category)).Inc()
	}
	g.log.Infow("alert admitted",
		"category", ev.Category,
		"sub_type", ev.SubType,
		"confidence", ev.Confidence,
	)

	message := fmt.Sprintf("ALERT [%s] at %s\n%s",
		ev.Category, now.Format("2006-01-02 15:04:05"), ev.Message)

	g.sideEffects.Add(1)
	go func() {
		defer g.sideEffects.Done()
		g.dispatch(message, ev.Frame, record)
	}()

	return true
}

// buildRecordLocked constructs the persisted record at admission time.
// Caller holds g.mu.
func (g *Gate) buildRecordLocked(ev Event, now time.Time) *types.AlertRecord {
	peopleCount := ev.PeopleCount
	if peopleCount == 0 {
		peopleCount = g.crowdCount
	}

	return &types.AlertRecord{
		ID:               uuid.NewString(),
		Types:            []string{string(ev.Category)},
		SubType:          ev.SubType,
		PersonName:       ev.PersonName,
		Confidence:       ev.Confidence,
		PeopleCount:      peopleCount,
		ViolenceDetected: ev.Category == types.CategoryIdentity,
		Location:         g.location,
		Date:             now.Format("2006-01-02"),
		Time:             now.Format("15:04:05"),
		CreatedAt:        now,
	}
}

// dispatch runs the best-effort side effects. Failures are logged and
// counted, never propagated: an admitted alert that fails to notify is
// still admitted for cooldown purposes.
func (g *Gate) dispatch(message string, frame *types.Frame, record *types.AlertRecord) {
	ctx := context.Background()

	if g.notifier != nil {
		if err := g.notifier.Notify(ctx, message, frame); err != nil {
			g.log.Warnw("notification failed", "error", err)
			if g.metrics != nil {
				g.metrics.SinkErrors.WithLabelValues("notifier").Inc()
			}
		}
	}

	if g.recorder != nil {
		if err := g.recorder.Insert(record); err != nil {
			g.log.Warnw("alert persistence failed", "error", err)
			if g.metrics != nil {
				g.metrics.SinkErrors.WithLabelValues("persistence").Inc()
			}
		}
	}
}

// Flush waits for in-flight side effects. Test hook.
func (g *Gate) Flush() {
	g.sideEffects.Wait()
}

// SetCrowdCount records the latest per-frame unique-person count.
func (g *Gate) SetCrowdCount(count int) {
	g.mu.Lock()
	g.crowdCount = count
	g.mu.Unlock()
}

// CrowdCount returns the latest per-frame unique-person count.
func (g *Gate) CrowdCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.crowdCount
}

// Status returns the current per-category display status. A category whose
// cooldown has expired reads as Safe again even if no new clear-detection
// event arrived.
func (g *Gate) Status() (crowdCount, weaponStatus, identityStatus string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	return strconv.Itoa(g.crowdCount),
		g.displayLocked(types.CategoryWeapon, now),
		g.displayLocked(types.CategoryIdentity, now)
}

func (g *Gate) displayLocked(cat types.Category, now time.Time) string {
	st, ok := g.states[cat]
	if !ok || st.lastFire.IsZero() || now.Sub(st.lastFire) >= g.window {
		return statusSafe
	}
	return st.status
}

func (g *Gate) state(cat types.Category) *cooldown {
	st, ok := g.states[cat]
	if !ok {
		st = &cooldown{status: statusSafe}
		g.states[cat] = st
	}
	return st
}
