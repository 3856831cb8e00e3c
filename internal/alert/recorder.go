package alert

import "github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"

// MultiRecorder hands each admitted record to every child recorder and
// returns the first error.
type MultiRecorder []Recorder

// Insert implements Recorder.
func (m MultiRecorder) Insert(rec *types.AlertRecord) error {
	var firstErr error
	for _, r := range m {
		if err := r.Insert(rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
