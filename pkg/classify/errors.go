package classify

import (
	"errors"
	"fmt"
)

// Stage identifies one step of the classification pipeline.
type Stage int

const (
	StageSummary Stage = iota
	StageDomains
	StageCandidates
	StageArbitration
)

func (s Stage) String() string {
	switch s {
	case StageSummary:
		return "summary"
	case StageDomains:
		return "domain selection"
	case StageCandidates:
		return "candidate selection"
	case StageArbitration:
		return "arbitration"
	default:
		return "unknown stage"
	}
}

// StageError reports which stage terminated a classification. It wraps the
// underlying oracle or validation failure; no stage substitutes a default
// answer for its own failure.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

var (
	// ErrNoDomains means validation discarded every domain the oracle named.
	ErrNoDomains = errors.New("no valid domains selected")

	// ErrNoCandidates means no leaf survived candidate selection in any domain.
	ErrNoCandidates = errors.New("no candidate leaves selected")

	// ErrInvalidSelection means the arbiter's response held no usable index.
	ErrInvalidSelection = errors.New("invalid selection")
)

// FailedStage returns the stage of a classification error, or ok=false when
// the error did not originate in a pipeline stage.
func FailedStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return 0, false
}
