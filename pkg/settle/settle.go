// Package settle collects the outcomes of independent best-effort
// sub-operations so callers can report an aggregate result without
// aborting on the first failure.
package settle

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Outcome records the result of a single sub-operation.
type Outcome struct {
	Label string
	Err   error
}

// Results accumulates outcomes. The zero value is ready to use.
type Results struct {
	outcomes []Outcome
}

// Record adds the outcome of a sub-operation identified by label.
func (r *Results) Record(label string, err error) {
	r.outcomes = append(r.outcomes, Outcome{Label: label, Err: err})
}

// Run executes fn and records its result under label.
func (r *Results) Run(label string, fn func() error) {
	r.Record(label, fn())
}

// Failed returns the outcomes that ended in an error.
func (r *Results) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// AllOK reports whether every recorded sub-operation succeeded.
func (r *Results) AllOK() bool {
	return len(r.Failed()) == 0
}

// Err combines every sub-operation error into one, or returns nil when
// all succeeded.
func (r *Results) Err() error {
	var combined error
	for _, o := range r.outcomes {
		if o.Err != nil {
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", o.Label, o.Err))
		}
	}
	return combined
}

// Warning renders the failed outcomes as a single human-readable line
// suitable for a response payload. Returns "" when nothing failed.
func (r *Results) Warning() string {
	failed := r.Failed()
	if len(failed) == 0 {
		return ""
	}
	parts := make([]string, 0, len(failed))
	for _, o := range failed {
		parts = append(parts, fmt.Sprintf("%s: %v", o.Label, o.Err))
	}
	return "some cleanup steps failed: " + strings.Join(parts, "; ")
}
