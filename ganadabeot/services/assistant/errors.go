package assistant

import (
	"errors"
	"fmt"
	"time"
)

// ErrRunTimeout matches every *TimeoutError via errors.Is.
var ErrRunTimeout = errors.New("assistant run did not complete in time")

// TimeoutError is returned when a run is still pending after the poll budget.
type TimeoutError struct {
	ThreadID string
	RunID    string
	Status   string
	Polls    int
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("assistant run %s still %q after %d polls (%s)", e.RunID, e.Status, e.Polls, e.Elapsed.Round(time.Millisecond))
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrRunTimeout
}

// RunFailedError is returned when a run reaches a terminal status other than completed.
type RunFailedError struct {
	ThreadID string
	RunID    string
	Status   string
	Code     string
	Message  string
}

func (e *RunFailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("assistant run %s ended %q: %s", e.RunID, e.Status, e.Message)
	}
	return fmt.Sprintf("assistant run %s ended %q", e.RunID, e.Status)
}

// StepError wraps a failed remote call with the protocol step it belongs to.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}
