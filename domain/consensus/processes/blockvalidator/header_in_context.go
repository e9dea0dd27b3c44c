package blockvalidator

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/util/mstime"
)

// ValidateHeaderInContext validates the header of candidate against
// chainContext, which must be the context the candidate extends: parent,
// version and vote, timestamp and proof of work, in that order.
func (v *blockValidator) ValidateHeaderInContext(candidate *externalapi.BlockCandidate,
	chainContext *externalapi.ChainContext) error {

	header := candidate.Block.Header
	err := checkParent(header, chainContext)
	if err != nil {
		return err
	}

	err = v.hardForkManager.CheckBlockVersion(header, chainContext)
	if err != nil {
		return err
	}

	err = v.checkTimestamp(header, chainContext)
	if err != nil {
		return err
	}

	return v.checkProofOfWork(candidate, chainContext)
}

func checkParent(header *externalapi.DomainBlockHeader, chainContext *externalapi.ChainContext) error {
	expectedPrevHash := chainContext.TopHash
	if chainContext.IsEmpty() {
		expectedPrevHash = externalapi.ZeroHash
	}
	if !header.PrevHash.Equal(expectedPrevHash) {
		return errors.Wrapf(ruleerrors.ErrWrongParent, "block extends %s but the chain top is %s",
			header.PrevHash, expectedPrevHash)
	}
	return nil
}

// checkTimestamp ensures the timestamp is after the median of the recent
// timestamps, once enough of them exist, and not too far in the future
func (v *blockValidator) checkTimestamp(header *externalapi.DomainBlockHeader,
	chainContext *externalapi.ChainContext) error {

	median, isActive := v.pastMedianTimeManager.PastMedianTime(chainContext)
	if isActive && header.Timestamp <= median {
		return errors.Wrapf(ruleerrors.ErrTimestampOutOfRange, "block timestamp of %d is not after "+
			"the median timestamp %d", header.Timestamp, median)
	}

	maxTimestamp := mstime.UnixSeconds(v.clock) + v.params.FutureTimeLimit
	if header.Timestamp > maxTimestamp {
		return errors.Wrapf(ruleerrors.ErrTimestampOutOfRange, "block timestamp of %d is "+
			"too far in the future, the maximum is %d", header.Timestamp, maxTimestamp)
	}
	return nil
}

// checkProofOfWork checks the proof-of-work hash of candidate against the
// difficulty required by chainContext. The hash computed in isolation is
// reused unless it is missing or was computed with another seed.
func (v *blockValidator) checkProofOfWork(candidate *externalapi.BlockCandidate,
	chainContext *externalapi.ChainContext) error {

	if v.params.SkipProofOfWork {
		return nil
	}

	powHash := candidate.PowHash
	seed, err := v.powManager.PowSeed(candidate.Height, chainContext)
	if err != nil {
		return err
	}
	if powHash == nil || !seedsEqual(seed, candidate.PowSeed) {
		powHash, err = v.powManager.PowHash(candidate.HashingBlob, candidate.Height, chainContext)
		if err != nil {
			return err
		}
		candidate.PowHash = powHash
		candidate.PowSeed = seed
	}

	if !v.powManager.CheckPowHash(powHash, &chainContext.NextDifficulty) {
		return errors.Wrapf(ruleerrors.ErrInsufficientWork, "proof of work hash %s of block %s "+
			"does not meet difficulty %s", powHash, candidate.Hash, chainContext.NextDifficulty.Dec())
	}
	return nil
}

func seedsEqual(a, b *externalapi.DomainHash) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}
