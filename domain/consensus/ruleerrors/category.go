package ruleerrors

import (
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// Category is the broad class of an error returned by the verification core
type Category uint8

// Error categories
const (
	CategoryNone Category = iota
	CategoryRejection
	CategoryDeferred
	CategoryState
	CategoryOverloaded
	CategoryOther
)

var categoryStrings = map[Category]string{
	CategoryNone:       "None",
	CategoryRejection:  "ConsensusRejection",
	CategoryDeferred:   "Deferred",
	CategoryState:      "StateError",
	CategoryOverloaded: "Overloaded",
	CategoryOther:      "Other",
}

func (c Category) String() string {
	return categoryStrings[c]
}

// Classify returns the category of err
func Classify(err error) Category {
	if err == nil {
		return CategoryNone
	}
	if errors.Is(err, ErrOverloaded) {
		return CategoryOverloaded
	}
	if errors.As(err, &StateError{}) {
		return CategoryState
	}
	if errors.As(err, &DeferredError{}) {
		return CategoryDeferred
	}
	if errors.As(err, &RuleError{}) {
		return CategoryRejection
	}
	return CategoryOther
}

// IsStateError returns whether err is a StateError
func IsStateError(err error) bool {
	return errors.As(err, &StateError{})
}

// NewVerificationOutcome turns the result of a verification into an
// outcome. Errors that are neither rule violations nor deferrals are not
// outcomes and are returned as is.
func NewVerificationOutcome(err error, chainContext *externalapi.ChainContext) (*externalapi.VerificationOutcome, error) {
	switch Classify(err) {
	case CategoryNone:
		return &externalapi.VerificationOutcome{Status: externalapi.StatusAccepted, ChainContext: chainContext}, nil
	case CategoryRejection:
		return &externalapi.VerificationOutcome{Status: externalapi.StatusRejected, Err: err}, nil
	case CategoryDeferred:
		return &externalapi.VerificationOutcome{Status: externalapi.StatusDeferred, Err: err}, nil
	default:
		return nil, err
	}
}
