package models

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a scoring stage could not produce a result.
// Probe stages map failures to neutral sub-results; the text-analysis stage
// escalates them, because a score without its base component is meaningless.
type FailureKind string

const (
	// FailureTransient covers unreachable collaborators: network errors,
	// timeouts, upstream 5xx. Safe to retry on a later backlog pass.
	FailureTransient FailureKind = "transient"

	// FailureMalformed covers responses that arrived but could not be
	// parsed even after embedded-block recovery. Distinct from a
	// legitimate low score.
	FailureMalformed FailureKind = "malformed"
)

// StageFailure is the uniform failure type every pipeline stage reports
// instead of ad hoc defaults.
type StageFailure struct {
	Stage string
	Kind  FailureKind
	Err   error
}

func (f *StageFailure) Error() string {
	return fmt.Sprintf("stage %s: %s failure: %v", f.Stage, f.Kind, f.Err)
}

func (f *StageFailure) Unwrap() error { return f.Err }

// NewStageFailure wraps err with its stage name and classification.
func NewStageFailure(stage string, kind FailureKind, err error) *StageFailure {
	return &StageFailure{Stage: stage, Kind: kind, Err: err}
}

// AsStageFailure extracts a StageFailure from an error chain.
func AsStageFailure(err error) (*StageFailure, bool) {
	var sf *StageFailure
	if errors.As(err, &sf) {
		return sf, true
	}
	return nil, false
}
