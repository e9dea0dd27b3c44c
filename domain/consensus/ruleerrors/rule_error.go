package ruleerrors

import (
	"fmt"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrMalformedTransaction indicates a transaction violates a structural
	// rule: counts, encodings, key offsets, duplicate key images or size.
	ErrMalformedTransaction = newRuleError("ErrMalformedTransaction")

	// ErrInsufficientFee indicates the fee is below the minimum for the
	// transaction's weight.
	ErrInsufficientFee = newRuleError("ErrInsufficientFee")

	// ErrInvalidRingSignature indicates the ring signatures, range proofs
	// or the balance proof of a transaction do not verify.
	ErrInvalidRingSignature = newRuleError("ErrInvalidRingSignature")

	// ErrDoubleSpend indicates a key image was already spent, either in the
	// chain or earlier in the same block.
	ErrDoubleSpend = newRuleError("ErrDoubleSpend")

	// ErrUnsupportedVersion indicates a block or transaction version that
	// is not allowed under the active hard fork.
	ErrUnsupportedVersion = newRuleError("ErrUnsupportedVersion")

	// ErrImmatureRingMember indicates a ring member that is too recent or
	// still locked to be spent.
	ErrImmatureRingMember = newRuleError("ErrImmatureRingMember")

	// ErrWrongParent indicates the block does not extend the current top.
	ErrWrongParent = newRuleError("ErrWrongParent")

	// ErrTimestampOutOfRange indicates the block timestamp is not above the
	// median of the recent timestamps or too far in the future.
	ErrTimestampOutOfRange = newRuleError("ErrTimestampOutOfRange")

	// ErrInsufficientWork indicates the proof-of-work hash does not meet the
	// required difficulty.
	ErrInsufficientWork = newRuleError("ErrInsufficientWork")

	// ErrBlockTooLarge indicates the block weight exceeds the effective
	// weight limit.
	ErrBlockTooLarge = newRuleError("ErrBlockTooLarge")

	// ErrInvalidReward indicates the miner transaction pays out more than
	// the block reward plus fees.
	ErrInvalidReward = newRuleError("ErrInvalidReward")

	// ErrInvalidMinerTransaction indicates a miner transaction of the wrong
	// shape: inputs, height, unlock time or version.
	ErrInvalidMinerTransaction = newRuleError("ErrInvalidMinerTransaction")

	// ErrMalformedBlock indicates a block whose transaction list is
	// inconsistent with the supplied bodies or contains duplicates.
	ErrMalformedBlock = newRuleError("ErrMalformedBlock")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or transaction failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// InvalidTransaction pairs a transaction of a block with the reason it is
// invalid
type InvalidTransaction struct {
	Index int
	Hash  *externalapi.DomainHash
	Error error
}

func (invalid InvalidTransaction) String() string {
	return fmt.Sprintf("(%d %s: %s)", invalid.Index, invalid.Hash, invalid.Error)
}

// ErrInvalidTransactionsInBatch lists the members of a verification batch
// that failed individual verification
type ErrInvalidTransactionsInBatch struct {
	InvalidTransactions []InvalidTransaction
}

func (e ErrInvalidTransactionsInBatch) Error() string {
	return fmt.Sprint(e.InvalidTransactions)
}

// NewErrInvalidTransactionsInBatch creates a new ErrInvalidTransactionsInBatch
// wrapped in an ErrInvalidRingSignature RuleError
func NewErrInvalidTransactionsInBatch(invalidTransactions []InvalidTransaction) error {
	return errors.WithStack(RuleError{
		message: ErrInvalidRingSignature.message,
		inner:   ErrInvalidTransactionsInBatch{invalidTransactions},
	})
}
