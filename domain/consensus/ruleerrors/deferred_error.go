package ruleerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// These constants are used to identify a specific DeferredError.
var (
	// ErrMissingRingMember indicates a ring member that is not indexed
	// locally yet.
	ErrMissingRingMember = newDeferredError("ErrMissingRingMember")

	// ErrMissingParent indicates a block whose parent has not been
	// committed yet.
	ErrMissingParent = newDeferredError("ErrMissingParent")

	// ErrMissingTransaction indicates a block that references a transaction
	// whose body was not supplied.
	ErrMissingTransaction = newDeferredError("ErrMissingTransaction")
)

// DeferredError means an object cannot be judged yet because something it
// depends on is not known locally. It is not a rejection; the caller may
// resubmit once the dependency is available.
type DeferredError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e DeferredError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e DeferredError) Unwrap() error {
	return e.inner
}

// Is matches deferred errors by kind, regardless of their details
func (e DeferredError) Is(target error) bool {
	targetDeferred, ok := target.(DeferredError)
	return ok && targetDeferred.message == e.message
}

func newDeferredError(message string) DeferredError {
	return DeferredError{message: message}
}

// MissingRingMember identifies an unresolvable ring member
type MissingRingMember struct {
	Amount      uint64
	GlobalIndex uint64
}

func (e MissingRingMember) Error() string {
	return fmt.Sprintf("output %d of amount %d is not indexed", e.GlobalIndex, e.Amount)
}

// NewErrMissingRingMember creates an ErrMissingRingMember carrying the
// unresolved output
func NewErrMissingRingMember(amount, globalIndex uint64) error {
	return errors.WithStack(DeferredError{
		message: ErrMissingRingMember.message,
		inner:   MissingRingMember{Amount: amount, GlobalIndex: globalIndex},
	})
}

// ErrOutputNotFound is returned by output indexes for outputs they do not
// know. The transaction validator turns it into ErrMissingRingMember.
var ErrOutputNotFound = errors.New("output not found")
