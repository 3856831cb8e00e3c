// Package gallery holds the known-identity face embeddings and answers
// nearest-neighbour queries against them.
package gallery

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Entry is one named embedding in the gallery file.
type Entry struct {
	Name     string    `json:"name"`
	Encoding []float64 `json:"encoding"`
}

// Gallery is an immutable set of known identities. Safe for concurrent use.
type Gallery struct {
	entries   []Entry
	tolerance float64
}

// Load reads a JSON gallery file. An empty gallery is valid: matching then
// always reports Unknown.
func Load(path string, tolerance float64) (*Gallery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gallery %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse gallery %s: %w", path, err)
	}

	return New(entries, tolerance), nil
}

// New builds a gallery from entries already in memory.
func New(entries []Entry, tolerance float64) *Gallery {
	return &Gallery{entries: entries, tolerance: tolerance}
}

// Size returns the number of known identities.
func (g *Gallery) Size() int {
	return len(g.entries)
}

// Match finds the gallery entry with minimum Euclidean distance to the
// encoding. Ties keep the first index. ok is true only when the nearest
// distance is within tolerance; name is "Unknown" otherwise.
func (g *Gallery) Match(encoding []float64) (name string, distance float64, ok bool) {
	bestIdx := -1
	bestDist := math.Inf(1)

	for i, entry := range g.entries {
		d := euclidean(entry.Encoding, encoding)
		if d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return "Unknown", math.Inf(1), false
	}
	if bestDist > g.tolerance {
		return "Unknown", bestDist, false
	}
	return g.entries[bestIdx].Name, bestDist, true
}

func euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
