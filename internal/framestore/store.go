// Package framestore keeps the most recently produced annotated frame per
// pipeline stage. No history is retained; publishing replaces the previous
// entry for the key. One lock covers the whole store: critical sections are
// pointer swaps, never inference.
package framestore

import (
	"sync"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

// Key identifies a stage slot in the store. Typed keys instead of raw
// strings so a misspelled lookup fails at compile time.
type Key int

const (
	KeyCrowd Key = iota
	KeyWeapon
	KeyFinal
)

// String returns the wire name of the key, matching the feed route names.
func (k Key) String() string {
	switch k {
	case KeyCrowd:
		return "crowd"
	case KeyWeapon:
		return "weapon"
	case KeyFinal:
		return "final"
	default:
		return "unknown"
	}
}

// ParseKey maps a feed name to its key. The original exposed the final
// stage as "violence"; that name is kept as an alias.
func ParseKey(name string) (Key, bool) {
	switch name {
	case "crowd":
		return KeyCrowd, true
	case "weapon":
		return KeyWeapon, true
	case "final", "violence":
		return KeyFinal, true
	default:
		return 0, false
	}
}

// ViewerFallback is the lookup order used for live viewers when the
// requested key has not been produced yet.
var ViewerFallback = []Key{KeyFinal, KeyWeapon, KeyCrowd}

// Store is the shared latest-frame cache. A single writer per key,
// any number of readers.
type Store struct {
	mu     sync.Mutex
	frames map[Key]*types.Frame
}

// New returns an empty store.
func New() *Store {
	return &Store{frames: make(map[Key]*types.Frame)}
}

// Publish atomically replaces the entry for key. Published frames are owned
// by the store and must not be mutated afterwards.
func (s *Store) Publish(key Key, frame *types.Frame) {
	s.mu.Lock()
	s.frames[key] = frame
	s.mu.Unlock()
}

// Get returns the current entry for key, or nil when nothing has been
// published yet.
func (s *Store) Get(key Key) *types.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames[key]
}

// GetWithFallback returns the first present entry scanning keys in order.
func (s *Store) GetWithFallback(keys ...Key) *types.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		if frame := s.frames[key]; frame != nil {
			return frame
		}
	}
	return nil
}
