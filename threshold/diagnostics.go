package threshold

import (
	"sync"

	"github.com/montanaflynn/stats"
)

// SigningTelemetry records, across the scheme's lifetime, how many attempts
// SignSession needed per completed (successful or exhausted) session, and
// reports summary statistics. Guarded the same way the teacher's
// gpu.RingtailGPU guards its own mutable state.
type SigningTelemetry struct {
	mu       sync.RWMutex
	attempts []float64
}

func newSigningTelemetry() *SigningTelemetry {
	return &SigningTelemetry{}
}

func (st *SigningTelemetry) record(attempts int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.attempts = append(st.attempts, float64(attempts))
}

// Sessions returns how many sessions have been recorded.
func (st *SigningTelemetry) Sessions() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.attempts)
}

// MeanAttempts returns the mean number of SignSession attempts per session,
// or 0 if none have been recorded yet.
func (st *SigningTelemetry) MeanAttempts() (float64, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if len(st.attempts) == 0 {
		return 0, nil
	}
	return stats.Mean(st.attempts)
}

// StddevAttempts returns the sample standard deviation of SignSession
// attempts per session, or 0 if fewer than two sessions have been recorded.
func (st *SigningTelemetry) StddevAttempts() (float64, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if len(st.attempts) < 2 {
		return 0, nil
	}
	return stats.StandardDeviationSample(st.attempts)
}
