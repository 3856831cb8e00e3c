// Package notify delivers alert messages to external channels. Deliveries
// are best-effort: the alert gate logs and counts failures but never blocks
// the pipeline on them.
package notify

import (
	"context"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// Notifier pushes a human-readable alert, optionally with the annotated
// frame that triggered it.
type Notifier interface {
	Notify(ctx context.Context, message string, frame *types.Frame) error
}

// Fanout delivers to every child notifier and returns the first error.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, message string, frame *types.Frame) error {
	var firstErr error
	for _, n := range f {
		if err := n.Notify(ctx, message, frame); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
