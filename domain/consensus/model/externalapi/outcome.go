package externalapi

import "fmt"

// VerificationStatus is the terminal state of a verification request
type VerificationStatus uint8

// Verification statuses
const (
	StatusAccepted VerificationStatus = iota
	StatusRejected
	StatusDeferred
)

var verificationStatusStrings = map[VerificationStatus]string{
	StatusAccepted: "Accepted",
	StatusRejected: "Rejected",
	StatusDeferred: "Deferred",
}

func (status VerificationStatus) String() string {
	if s, ok := verificationStatusStrings[status]; ok {
		return s
	}
	return fmt.Sprintf("VerificationStatus(%d)", status)
}

// VerificationOutcome is the result of verifying a block or a transaction.
// Err holds the rejection reason or the missing dependency. For accepted
// blocks ChainContext is the context the block produced.
type VerificationOutcome struct {
	Status       VerificationStatus
	Err          error
	ChainContext *ChainContext
}

func (outcome *VerificationOutcome) String() string {
	if outcome.Err == nil {
		return outcome.Status.String()
	}
	return fmt.Sprintf("%s(%s)", outcome.Status, outcome.Err)
}
