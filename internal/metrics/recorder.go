// Package metrics records translation outcomes and latencies.
package metrics

import "time"

// Outcome labels a finished translation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Recorder receives one observation per translated document.
type Recorder interface {
	ObserveTranslation(format string, d time.Duration, outcome Outcome)
}

// NoopRecorder discards observations.
type NoopRecorder struct{}

func (NoopRecorder) ObserveTranslation(string, time.Duration, Outcome) {}

type multiRecorder []Recorder

func (m multiRecorder) ObserveTranslation(format string, d time.Duration, outcome Outcome) {
	for _, r := range m {
		r.ObserveTranslation(format, d, outcome)
	}
}

// Multi fans each observation out to every non-nil recorder.
func Multi(recs ...Recorder) Recorder {
	out := make(multiRecorder, 0, len(recs))
	for _, r := range recs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
