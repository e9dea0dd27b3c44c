package consensus

import (
	"sync/atomic"

	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/infrastructure/logger"
)

type consensus struct {
	chainContextStore    model.ChainContextStore
	blockProcessor       model.BlockProcessor
	blockValidator       model.BlockValidator
	transactionValidator model.TransactionValidator

	// halted is set once inserting a block failed with a StateError that
	// the chain context store did not observe itself
	halted atomic.Bool
}

// ChainContext returns the current chain context
func (s *consensus) ChainContext() *externalapi.ChainContext {
	return s.chainContextStore.Current()
}

// IsHalted returns whether a StateError stopped this instance from
// committing blocks
func (s *consensus) IsHalted() bool {
	return s.halted.Load() || s.chainContextStore.IsHalted()
}

// VerifyTransaction verifies a single transaction on top of the current
// chain context
func (s *consensus) VerifyTransaction(transaction *externalapi.DomainTransaction) (*externalapi.VerificationOutcome, error) {
	chainContext := s.chainContextStore.Current()
	err := s.transactionValidator.ValidateTransaction(transaction, chainContext)
	return ruleerrors.NewVerificationOutcome(err, chainContext)
}

// VerifyTransactions verifies transactions on top of the current chain
// context. The signatures of every transaction that passes the cheaper
// checks are verified as a single batch. Outcomes are returned in the
// order of transactions.
func (s *consensus) VerifyTransactions(transactions []*externalapi.DomainTransaction) (
	[]*externalapi.VerificationOutcome, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "VerifyTransactions")
	defer onEnd()

	chainContext := s.chainContextStore.Current()
	transactionErrors := make([]error, len(transactions))
	toVerify := make([]*externalapi.DomainTransaction, 0, len(transactions))
	toVerifyIndexes := make([]int, 0, len(transactions))
	for i, transaction := range transactions {
		err := s.validateTransactionWithoutSignatures(transaction, chainContext)
		if err != nil {
			transactionErrors[i] = err
			continue
		}
		toVerify = append(toVerify, transaction)
		toVerifyIndexes = append(toVerifyIndexes, i)
	}

	signatureErrors, err := s.transactionValidator.VerifyTransactionSignatures(toVerify)
	if err != nil {
		return nil, err
	}
	for i, signatureErr := range signatureErrors {
		transactionErrors[toVerifyIndexes[i]] = signatureErr
	}

	outcomes := make([]*externalapi.VerificationOutcome, len(transactions))
	for i, transactionErr := range transactionErrors {
		outcomes[i], err = ruleerrors.NewVerificationOutcome(transactionErr, chainContext)
		if err != nil {
			return nil, err
		}
	}
	return outcomes, nil
}

func (s *consensus) validateTransactionWithoutSignatures(transaction *externalapi.DomainTransaction,
	chainContext *externalapi.ChainContext) error {

	err := s.transactionValidator.ValidateTransactionInIsolation(transaction, chainContext.HardForkVersion)
	if err != nil {
		return err
	}
	err = s.transactionValidator.PopulateWithRingMembers(transaction, chainContext)
	if err != nil {
		return err
	}
	return s.transactionValidator.ValidateTransactionInContext(transaction, chainContext)
}

// VerifyBlock verifies block on top of the current chain context and
// commits it if it is valid
func (s *consensus) VerifyBlock(block *externalapi.DomainBlock) (*externalapi.VerificationOutcome, error) {
	chainContext, err := s.blockProcessor.ValidateAndInsertBlock(block)
	return s.blockOutcome(chainContext, err)
}

// ValidateBlockInIsolation runs the checks of block that do not need its
// parent to be committed. chainContext is only used to resolve ring
// members and PoW seeds and may lag behind the block's parent.
func (s *consensus) ValidateBlockInIsolation(block *externalapi.DomainBlock,
	chainContext *externalapi.ChainContext) (*externalapi.BlockCandidate, error) {

	return s.blockValidator.ValidateBlockInIsolation(block, chainContext)
}

// InsertBlockCandidate validates candidate on top of the current chain
// context and commits it if it is valid
func (s *consensus) InsertBlockCandidate(candidate *externalapi.BlockCandidate) (*externalapi.VerificationOutcome, error) {
	chainContext, err := s.blockProcessor.InsertBlockCandidate(candidate)
	return s.blockOutcome(chainContext, err)
}

func (s *consensus) blockOutcome(chainContext *externalapi.ChainContext, err error) (*externalapi.VerificationOutcome, error) {
	if ruleerrors.IsStateError(err) {
		if !s.halted.Swap(true) {
			log.Criticalf("Consensus halted: %+v", err)
		}
		return nil, err
	}
	return ruleerrors.NewVerificationOutcome(err, chainContext)
}
