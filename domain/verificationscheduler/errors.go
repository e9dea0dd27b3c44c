package verificationscheduler

import "github.com/pkg/errors"

var (
	// ErrSchedulerHalted indicates that a StateError stopped the scheduler
	// from verifying and committing anything else
	ErrSchedulerHalted = errors.New("verification scheduler is halted")

	// ErrSchedulerStopped indicates that the scheduler was stopped
	ErrSchedulerStopped = errors.New("verification scheduler is stopped")

	// ErrNilContext indicates a request submitted without a context
	ErrNilContext = errors.New("request context is nil")
)
