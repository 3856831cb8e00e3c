// Package evidence persists annotated snapshots of admitted alerts to
// disk. Writes happen on a background goroutine; a full queue drops the
// snapshot rather than stalling the alert path.
package evidence

import (
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/logger"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// Writer saves one JPEG per admitted alert under its base directory.
type Writer struct {
	mu           sync.RWMutex
	basePath     string
	quality      int
	running      bool
	filesWritten uint64
	bytesWritten uint64

	snapshots chan snapshot
	wg        sync.WaitGroup
	log       *zap.SugaredLogger
}

type snapshot struct {
	frame   *types.Frame
	capture time.Time
}

// NewWriter creates a writer rooted at basePath. Call Start before use.
func NewWriter(basePath string, quality int) *Writer {
	return &Writer{
		basePath:  basePath,
		quality:   quality,
		snapshots: make(chan snapshot, 16),
		log:       logger.Named("evidence"),
	}
}

// Start creates the base directory and launches the write loop.
func (w *Writer) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("already running")
	}
	if err := os.MkdirAll(w.basePath, 0o755); err != nil {
		return fmt.Errorf("failed to create evidence directory: %w", err)
	}

	w.running = true
	w.wg.Add(1)
	go w.writeLoop()
	return nil
}

// Notify implements notify.Notifier: the frame is queued for a snapshot
// write. The message is carried by the other sinks, not the file.
func (w *Writer) Notify(ctx context.Context, message string, frame *types.Frame) error {
	if frame == nil {
		return nil
	}

	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()
	if !running {
		return fmt.Errorf("evidence writer not running")
	}

	select {
	case w.snapshots <- snapshot{frame: frame, capture: frame.Timestamp}:
		return nil
	default:
		return fmt.Errorf("evidence queue full, snapshot dropped")
	}
}

func (w *Writer) writeLoop() {
	defer w.wg.Done()

	for {
		w.mu.RLock()
		running := w.running
		w.mu.RUnlock()

		if !running {
			for len(w.snapshots) > 0 {
				w.write(<-w.snapshots)
			}
			return
		}

		select {
		case snap := <-w.snapshots:
			w.write(snap)
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (w *Writer) write(snap snapshot) {
	name := fmt.Sprintf("alert_%s_%d.jpg", snap.capture.Format("20060102_150405"), snap.frame.Number)
	path := filepath.Join(w.basePath, name)

	file, err := os.Create(path)
	if err != nil {
		w.log.Warnw("snapshot create failed", "path", path, "error", err)
		return
	}
	defer file.Close()

	if err := jpeg.Encode(file, snap.frame.Image, &jpeg.Options{Quality: w.quality}); err != nil {
		w.log.Warnw("snapshot encode failed", "path", path, "error", err)
		return
	}

	info, err := file.Stat()
	if err == nil {
		w.mu.Lock()
		w.filesWritten++
		w.bytesWritten += uint64(info.Size())
		w.mu.Unlock()
	}
}

// Stats returns the number of snapshots and bytes written so far.
func (w *Writer) Stats() (files, bytes uint64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.filesWritten, w.bytesWritten
}

// Close drains pending snapshots and stops the write loop.
func (w *Writer) Close() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}
