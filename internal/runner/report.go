package runner

import (
	"errors"
	"fmt"
	"time"

	"github.com/railyard-labs/railyard/internal/recipe"
)

var (
	// ErrLocked is returned when another run holds the target's lock.
	ErrLocked = errors.New("another run is in progress for this project")
	// ErrPostcondition is returned when a command did not create a file its
	// step declares in creates.
	ErrPostcondition = errors.New("postcondition failed")
)

// Status is the outcome of one step.
type Status string

const (
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusWarned  Status = "warned"
	StatusFailed  Status = "failed"
	// StatusPlanned marks steps visited in dry-run mode.
	StatusPlanned Status = "planned"
)

// StepOutcome records what happened to one step.
type StepOutcome struct {
	ID       string
	Action   string
	Status   Status
	Err      string
	Duration time.Duration
}

// Report summarizes a run.
type Report struct {
	RunID    string
	Recipe   string
	Steps    []StepOutcome
	Warnings []string
	// Files lists paths written by copy steps, relative to the target.
	Files []string
}

// Count returns the number of steps with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Steps {
		if o.Status == s {
			n++
		}
	}
	return n
}

// StepError wraps the error that aborted a run.
type StepError struct {
	Step  recipe.Step
	Index int // 1-based
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Step.ID, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
