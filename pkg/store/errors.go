package store

import (
	"errors"
	"fmt"
)

// statusCoder is implemented by transport errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// LoadFailure records a failed tree fetch. The previous forest is kept.
type LoadFailure struct {
	Status int // HTTP status, 0 for network or decode errors
	Cause  error
}

func (e *LoadFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("unable to load content (%d): %v", e.Status, e.Cause)
	}
	return fmt.Sprintf("unable to load content: %v", e.Cause)
}

func (e *LoadFailure) Unwrap() error {
	return e.Cause
}

// ProgressFetchFailure records a failed completed-tests fetch. The completed
// set degrades to empty; progress shows 0% instead of blocking navigation.
type ProgressFetchFailure struct {
	Status int
	Cause  error
}

func (e *ProgressFetchFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("unable to load progress (%d): %v", e.Status, e.Cause)
	}
	return fmt.Sprintf("unable to load progress: %v", e.Cause)
}

func (e *ProgressFetchFailure) Unwrap() error {
	return e.Cause
}

func statusOf(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}
