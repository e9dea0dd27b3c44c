package blockvalidator

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/consensushashing"
	"github.com/ringnet/ringd/domain/consensus/utils/serialization"
	"github.com/ringnet/ringd/infrastructure/logger"
)

// ValidateBlockInIsolation runs every check of block that does not need its
// parent to be the top of chainContext, and does the expensive work of
// verifying it: the proof-of-work hash and the signatures of its
// transactions. chainContext may lag behind the block's parent; whatever
// could not be done because of that is redone in context.
func (v *blockValidator) ValidateBlockInIsolation(block *externalapi.DomainBlock,
	chainContext *externalapi.ChainContext) (*externalapi.BlockCandidate, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBlockInIsolation")
	defer onEnd()

	err := checkBlockShape(block)
	if err != nil {
		return nil, err
	}

	version, err := externalapi.HardForkVersionFromByte(block.Header.MajorVersion)
	if err != nil {
		return nil, errors.Wrapf(ruleerrors.ErrUnsupportedVersion, "%s", err)
	}

	err = v.checkMinerTransaction(block.MinerTransaction, version)
	if err != nil {
		return nil, err
	}

	err = checkTransactionIDs(block)
	if err != nil {
		return nil, err
	}

	// Bodies are hashed only after they were checked to be well formed
	err = v.checkTransactionsInIsolation(block, version)
	if err != nil {
		return nil, err
	}

	err = checkTransactionHashes(block)
	if err != nil {
		return nil, err
	}

	err = checkBlockDoubleSpends(block)
	if err != nil {
		return nil, err
	}

	blob, err := consensushashing.BlockHashingBlob(block)
	if err != nil {
		return nil, err
	}
	weight, err := blockWeight(block)
	if err != nil {
		return nil, err
	}
	candidate := &externalapi.BlockCandidate{
		Block:       block,
		Hash:        consensushashing.BlockHashFromBlob(blob),
		HashingBlob: blob,
		Height:      block.MinerTransaction.Inputs[0].Height,
		Version:     version,
		Weight:      weight,
	}

	err = v.computePowHash(candidate, chainContext)
	if err != nil {
		return nil, err
	}

	err = v.verifySignatures(candidate, chainContext)
	if err != nil {
		return nil, err
	}

	return candidate, nil
}

func checkBlockShape(block *externalapi.DomainBlock) error {
	if block.Header == nil {
		return errors.Wrap(ruleerrors.ErrMalformedBlock, "block has no header")
	}
	if block.Header.PrevHash == nil {
		return errors.Wrap(ruleerrors.ErrMalformedBlock, "block has no previous hash")
	}
	if block.MinerTransaction == nil {
		return errors.Wrap(ruleerrors.ErrMalformedBlock, "block has no miner transaction")
	}
	if len(block.Transactions) > len(block.TransactionHashes) {
		return errors.Wrapf(ruleerrors.ErrMalformedBlock, "block lists %d transactions but "+
			"carries %d bodies", len(block.TransactionHashes), len(block.Transactions))
	}
	return nil
}

// checkMinerTransaction checks the parts of the miner transaction that do
// not depend on the chain: a single generation input, the unlock time that
// goes with its height, explicit outputs and the transaction version of the
// fork.
func (v *blockValidator) checkMinerTransaction(minerTransaction *externalapi.DomainTransaction,
	version externalapi.HardForkVersion) error {

	if len(minerTransaction.Inputs) != 1 || minerTransaction.Inputs[0] == nil ||
		minerTransaction.Inputs[0].Type != externalapi.InputTypeGen {
		return errors.Wrap(ruleerrors.ErrInvalidMinerTransaction, "miner transaction must have "+
			"exactly one generation input")
	}

	height := minerTransaction.Inputs[0].Height
	expectedUnlockTime := height + v.params.MinedMoneyUnlockWindow
	if minerTransaction.UnlockTime != expectedUnlockTime {
		return errors.Wrapf(ruleerrors.ErrInvalidMinerTransaction, "miner transaction of height %d "+
			"unlocks at %d instead of %d", height, minerTransaction.UnlockTime, expectedUnlockTime)
	}

	expectedVersion := externalapi.TransactionVersionTransparent
	if version >= v.params.ConfidentialMinerOutputsVersion {
		expectedVersion = externalapi.TransactionVersionConfidential
	}
	if minerTransaction.Version != expectedVersion {
		return errors.Wrapf(ruleerrors.ErrInvalidMinerTransaction, "miner transaction has version %d "+
			"instead of %d under %s", minerTransaction.Version, expectedVersion, version)
	}

	if minerTransaction.Signature != nil {
		return errors.Wrap(ruleerrors.ErrInvalidMinerTransaction, "miner transaction carries a signature")
	}
	if minerTransaction.Fee != 0 {
		return errors.Wrap(ruleerrors.ErrInvalidMinerTransaction, "miner transaction pays a fee")
	}

	if len(minerTransaction.Outputs) == 0 {
		return errors.Wrap(ruleerrors.ErrInvalidMinerTransaction, "miner transaction has no outputs")
	}
	_, err := minerOutputsSum(minerTransaction)
	return err
}

// minerOutputsSum returns the total amount paid by the miner transaction
func minerOutputsSum(minerTransaction *externalapi.DomainTransaction) (uint64, error) {
	sum := uint64(0)
	for i, output := range minerTransaction.Outputs {
		if output == nil {
			return 0, errors.Wrapf(ruleerrors.ErrInvalidMinerTransaction, "miner output %d is missing", i)
		}
		if output.Amount == 0 || output.Commitment != nil {
			return 0, errors.Wrapf(ruleerrors.ErrInvalidMinerTransaction, "miner output %d "+
				"does not have an explicit amount", i)
		}
		if sum+output.Amount < sum {
			return 0, errors.Wrap(ruleerrors.ErrInvalidMinerTransaction, "miner outputs overflow")
		}
		sum += output.Amount
	}
	return sum, nil
}

// checkTransactionIDs checks that the listed transaction ids are unique and
// that every body is present
func checkTransactionIDs(block *externalapi.DomainBlock) error {
	existingHashes := make(map[externalapi.DomainHash]int, len(block.TransactionHashes))
	for i, hash := range block.TransactionHashes {
		if hash == nil {
			return errors.Wrapf(ruleerrors.ErrMalformedBlock, "transaction id %d is missing", i)
		}
		if first, exists := existingHashes[*hash]; exists {
			return errors.Wrapf(ruleerrors.ErrMalformedBlock, "transactions %d and %d are both %s",
				first, i, hash)
		}
		existingHashes[*hash] = i
	}

	for i, hash := range block.TransactionHashes {
		if i >= len(block.Transactions) || block.Transactions[i] == nil {
			return errors.Wrapf(ruleerrors.ErrMissingTransaction, "transaction %d (%s) is not known", i, hash)
		}
	}
	return nil
}

// checkTransactionHashes checks that every body hashes to its listed id
func checkTransactionHashes(block *externalapi.DomainBlock) error {
	for i, hash := range block.TransactionHashes {
		actualHash, err := consensushashing.TransactionHash(block.Transactions[i])
		if err != nil {
			return errors.Wrapf(err, "transaction %d", i)
		}
		if !actualHash.Equal(hash) {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "transaction %d is listed as %s "+
				"but hashes to %s", i, hash, actualHash)
		}
	}
	return nil
}

func (v *blockValidator) checkTransactionsInIsolation(block *externalapi.DomainBlock,
	version externalapi.HardForkVersion) error {

	for i, tx := range block.Transactions {
		err := v.transactionValidator.ValidateTransactionInIsolation(tx, version)
		if err != nil {
			return errors.Wrapf(err, "transaction %d (%s) failed isolation check",
				i, block.TransactionHashes[i])
		}
	}
	return nil
}

// checkBlockDoubleSpends checks that no key image is spent by two
// transactions of the block
func checkBlockDoubleSpends(block *externalapi.DomainBlock) error {
	spentBy := make(map[externalapi.KeyImage]int)
	for i, tx := range block.Transactions {
		for _, input := range tx.Inputs {
			if first, exists := spentBy[input.KeyImage]; exists {
				return errors.Wrapf(ruleerrors.ErrDoubleSpend, "transactions %d and %d both spend "+
					"key image %s", first, i, input.KeyImage)
			}
			spentBy[input.KeyImage] = i
		}
	}
	return nil
}

// blockWeight returns the encoded size of the header, the miner transaction
// and every transaction of the block. Transaction weights must be populated.
func blockWeight(block *externalapi.DomainBlock) (uint64, error) {
	minerTransactionWeight, err := serialization.TransactionSize(block.MinerTransaction)
	if err != nil {
		return 0, errors.Wrapf(ruleerrors.ErrInvalidMinerTransaction, "%s", err)
	}
	weight := serialization.HeaderSize(block.Header) + minerTransactionWeight
	for _, tx := range block.Transactions {
		weight += tx.Weight
	}
	return weight, nil
}

// computePowHash computes the proof-of-work hash of candidate. It is left
// nil if the seed of the candidate's height is not known to chainContext.
func (v *blockValidator) computePowHash(candidate *externalapi.BlockCandidate,
	chainContext *externalapi.ChainContext) error {

	if v.params.SkipProofOfWork {
		return nil
	}

	seed, err := v.powManager.PowSeed(candidate.Height, chainContext)
	if err != nil {
		if errors.Is(err, ruleerrors.ErrMissingParent) {
			log.Debugf("Seed of block %s at height %d is not known yet", candidate.Hash, candidate.Height)
			return nil
		}
		return err
	}

	powHash, err := v.powManager.PowHash(candidate.HashingBlob, candidate.Height, chainContext)
	if err != nil {
		return err
	}
	candidate.PowHash = powHash
	candidate.PowSeed = seed
	return nil
}

// verifySignatures resolves the rings of every transaction through
// chainContext and verifies all their signatures as one batch. Signatures
// are left unverified if some ring member is beyond chainContext.
func (v *blockValidator) verifySignatures(candidate *externalapi.BlockCandidate,
	chainContext *externalapi.ChainContext) error {

	transactions := candidate.Block.Transactions
	for i, tx := range transactions {
		err := v.transactionValidator.PopulateWithRingMembers(tx, chainContext)
		if err == nil {
			continue
		}
		switch ruleerrors.Classify(err) {
		case ruleerrors.CategoryDeferred:
			log.Debugf("Ring members of transaction %d of block %s are not known yet: %s", i, candidate.Hash, err)
			return nil
		case ruleerrors.CategoryRejection:
			// Rejected again in context, in transaction order
			return nil
		default:
			return err
		}
	}

	signatureErrors, err := v.transactionValidator.VerifyTransactionSignatures(transactions)
	if err != nil {
		return err
	}
	candidate.SignatureErrors = signatureErrors
	return nil
}
