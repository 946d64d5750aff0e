package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrTransport marks a request that failed on every attempt of every
	// upstream domain.
	ErrTransport = errors.New("upstream transport failed")
	// ErrUpstream marks a well-formed upstream response that reported failure.
	ErrUpstream = errors.New("upstream rejected request")
	// ErrPersistence marks a store write that aborted the run.
	ErrPersistence = errors.New("persistence failed")
	// ErrNoExperts is returned when no leaderboard produced any expert.
	ErrNoExperts = errors.New("no experts collected from leaderboards")
)

// UpstreamError carries the application-level failure of a single action.
type UpstreamError struct {
	Action  int
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream action %d returned code %d", e.Action, e.Code)
	}
	return fmt.Sprintf("upstream action %d returned code %d: %s", e.Action, e.Code, e.Message)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
