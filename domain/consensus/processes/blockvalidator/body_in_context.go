package blockvalidator

import (
	"math"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
)

// ValidateBodyInContext validates the body of candidate against
// chainContext, assuming its header passed ValidateHeaderInContext: weight,
// miner transaction and reward, then every transaction in order.
func (v *blockValidator) ValidateBodyInContext(candidate *externalapi.BlockCandidate,
	chainContext *externalapi.ChainContext) error {

	err := v.checkBlockWeight(candidate, chainContext)
	if err != nil {
		return err
	}

	err = v.checkMinerTransactionInContext(candidate, chainContext)
	if err != nil {
		return err
	}

	return v.checkTransactionsInContext(candidate, chainContext)
}

func (v *blockValidator) checkBlockWeight(candidate *externalapi.BlockCandidate,
	chainContext *externalapi.ChainContext) error {

	weightLimit := v.weightManager.EffectiveWeightLimit(chainContext)
	if candidate.Weight > weightLimit {
		return errors.Wrapf(ruleerrors.ErrBlockTooLarge, "block weight %d is above the limit %d",
			candidate.Weight, weightLimit)
	}
	return nil
}

// checkMinerTransactionInContext checks the height of the miner transaction
// and that it pays no more than the penalized base reward plus the fees of
// the block
func (v *blockValidator) checkMinerTransactionInContext(candidate *externalapi.BlockCandidate,
	chainContext *externalapi.ChainContext) error {

	if candidate.Height != chainContext.NextHeight() {
		return errors.Wrapf(ruleerrors.ErrInvalidMinerTransaction, "miner transaction claims height %d "+
			"but the block is at height %d", candidate.Height, chainContext.NextHeight())
	}

	fees, err := blockFees(candidate.Block)
	if err != nil {
		return err
	}

	baseReward := v.coinbaseManager.BaseReward(chainContext.AlreadyGeneratedCoins, chainContext.HardForkVersion)
	reward, err := v.coinbaseManager.BlockReward(baseReward, candidate.Weight, chainContext.EffectiveMedianWeight)
	if err != nil {
		return err
	}
	maxMinerOutputs := uint64(math.MaxUint64)
	if reward <= math.MaxUint64-fees {
		maxMinerOutputs = reward + fees
	}

	minerOutputs, err := minerOutputsSum(candidate.Block.MinerTransaction)
	if err != nil {
		return err
	}
	if minerOutputs > maxMinerOutputs {
		return errors.Wrapf(ruleerrors.ErrInvalidReward, "miner transaction pays %d but the reward "+
			"is %d and the fees are %d", minerOutputs, reward, fees)
	}
	return nil
}

// blockFees returns the sum of the fees of the transactions of block
func blockFees(block *externalapi.DomainBlock) (uint64, error) {
	fees := uint64(0)
	for _, tx := range block.Transactions {
		if fees+tx.Fee < fees {
			return 0, errors.Wrap(ruleerrors.ErrInvalidReward, "block fees overflow")
		}
		fees += tx.Fee
	}
	return fees, nil
}

// checkTransactionsInContext validates every transaction of candidate
// against chainContext and reports the failure of the first failing
// transaction. Signatures not verified in isolation are verified here.
func (v *blockValidator) checkTransactionsInContext(candidate *externalapi.BlockCandidate,
	chainContext *externalapi.ChainContext) error {

	transactions := candidate.Block.Transactions
	transactionErrors := make([]error, len(transactions))
	signaturesVerified := candidate.SignatureErrors != nil
	for i, tx := range transactions {
		if !signaturesVerified {
			err := v.transactionValidator.PopulateWithRingMembers(tx, chainContext)
			if err != nil {
				if !isVerdict(err) {
					return err
				}
				transactionErrors[i] = err
				continue
			}
		}
		err := v.transactionValidator.ValidateTransactionInContext(tx, chainContext)
		if err != nil {
			if !isVerdict(err) {
				return err
			}
			transactionErrors[i] = err
		}
	}

	signatureErrors := candidate.SignatureErrors
	if !signaturesVerified {
		var err error
		signatureErrors, err = v.verifyRemainingSignatures(transactions, transactionErrors)
		if err != nil {
			return err
		}
		candidate.SignatureErrors = signatureErrors
	}

	for i := range transactions {
		err := transactionErrors[i]
		if err == nil {
			err = signatureErrors[i]
		}
		if err != nil {
			return errors.Wrapf(err, "transaction %d (%s) is invalid", i, candidate.Block.TransactionHashes[i])
		}
	}
	return nil
}

// verifyRemainingSignatures verifies the signatures of the transactions
// that did not already fail
func (v *blockValidator) verifyRemainingSignatures(transactions []*externalapi.DomainTransaction,
	transactionErrors []error) ([]error, error) {

	remaining := make([]*externalapi.DomainTransaction, 0, len(transactions))
	remainingIndexes := make([]int, 0, len(transactions))
	for i, tx := range transactions {
		if transactionErrors[i] == nil {
			remaining = append(remaining, tx)
			remainingIndexes = append(remainingIndexes, i)
		}
	}

	remainingErrors, err := v.transactionValidator.VerifyTransactionSignatures(remaining)
	if err != nil {
		return nil, err
	}
	signatureErrors := make([]error, len(transactions))
	for j, i := range remainingIndexes {
		signatureErrors[i] = remainingErrors[j]
	}
	return signatureErrors, nil
}

// isVerdict returns whether err says something about the block rather than
// about the validator
func isVerdict(err error) bool {
	category := ruleerrors.Classify(err)
	return category == ruleerrors.CategoryRejection || category == ruleerrors.CategoryDeferred
}
