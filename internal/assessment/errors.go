package assessment

import (
	"errors"
	"fmt"
)

var (
	ErrMissingInput        = errors.New("missing analysis input")
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	ErrCompanyNotFound     = errors.New("company not found")
)

// Stage is a state of the per-request analysis state machine.
type Stage string

const (
	StageFetched   Stage = "fetched"
	StageNarrated  Stage = "narrated"
	StageProposed  Stage = "proposed"
	StageValidated Stage = "validated"

	StageFetchFailed      Stage = "fetch_failed"
	StageAnalysisFailed   Stage = "analysis_failed"
	StageProposalFailed   Stage = "proposal_failed"
	StageValidationFailed Stage = "validation_failed"
)

// Failed reports whether s is a terminal failure state.
func (s Stage) Failed() bool {
	switch s {
	case StageFetchFailed, StageAnalysisFailed, StageProposalFailed, StageValidationFailed:
		return true
	}
	return false
}

// StageError records the terminal state a request ended in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
