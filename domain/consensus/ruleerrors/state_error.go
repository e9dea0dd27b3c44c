package ruleerrors

import (
	"github.com/pkg/errors"
)

// These constants are used to identify a specific StateError.
var (
	// ErrOutOfOrderCommit indicates a commit that does not extend the
	// current top by exactly one height.
	ErrOutOfOrderCommit = newStateError("ErrOutOfOrderCommit")

	// ErrCorruptedWindow indicates a rolling window that violates its
	// length or parallelism invariants.
	ErrCorruptedWindow = newStateError("ErrCorruptedWindow")

	// ErrNumericOverflow indicates a consensus computation overflowed its
	// protocol-defined width.
	ErrNumericOverflow = newStateError("ErrNumericOverflow")

	// ErrStoreHalted indicates the chain context store refuses commits after
	// a previous StateError.
	ErrStoreHalted = newStateError("ErrStoreHalted")

	// ErrPersistFailed indicates the chain state writer failed to persist
	// an accepted block.
	ErrPersistFailed = newStateError("ErrPersistFailed")
)

// StateError is an internal contract violation. It is fatal to the consensus
// instance: no further commits are allowed once one happened.
type StateError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e StateError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e StateError) Unwrap() error {
	return e.inner
}

// Is matches state errors by kind, regardless of their cause
func (e StateError) Is(target error) bool {
	targetState, ok := target.(StateError)
	return ok && targetState.message == e.message
}

func newStateError(message string) StateError {
	return StateError{message: message}
}

// NewErrPersistFailed wraps a storage error in an ErrPersistFailed StateError
func NewErrPersistFailed(cause error) error {
	return errors.WithStack(StateError{message: ErrPersistFailed.message, inner: cause})
}

// ErrOverloaded indicates the verification queue is full. It is transient;
// the caller may retry later.
var ErrOverloaded = errors.New("verification queue is full")
