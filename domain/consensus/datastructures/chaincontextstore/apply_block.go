package chaincontextstore

import (
	"math"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/mathutil"
)

// maxSeedHashes is the number of epoch seeds kept in the context. The seed
// of the current epoch and the one before it are the only ones in use.
const maxSeedHashes = 3

// applyBlock derives the context produced by block on top of base. base is
// not modified.
func (s *chainContextStore) applyBlock(base *externalapi.ChainContext,
	block *externalapi.AcceptedBlock) (*externalapi.ChainContext, error) {

	next := base.Clone()
	next.Height = block.Height
	next.TopHash = block.Hash
	next.Difficulty = block.Difficulty

	_, overflow := next.CumulativeDifficulty.AddOverflow(&next.CumulativeDifficulty, &block.Difficulty)
	if overflow {
		return nil, errors.Wrapf(ruleerrors.ErrNumericOverflow, "cumulative difficulty overflows at height %d",
			block.Height)
	}

	if block.GeneratedCoins > math.MaxUint64-next.AlreadyGeneratedCoins {
		next.AlreadyGeneratedCoins = math.MaxUint64
	} else {
		next.AlreadyGeneratedCoins += block.GeneratedCoins
	}

	next.TimestampWindow = appendToWindow(next.TimestampWindow, block.Header.Timestamp,
		s.params.TimestampCheckWindow)

	difficultyWindowSize := s.params.DifficultyWindow + s.params.DifficultyLag
	next.DifficultyTimestamps = appendToWindow(next.DifficultyTimestamps, block.Header.Timestamp,
		difficultyWindowSize)
	next.DifficultyCumulative = appendToWindow(next.DifficultyCumulative, next.CumulativeDifficulty,
		difficultyWindowSize)

	next.BlockWeightWindow = appendToWindow(next.BlockWeightWindow, block.Weight, s.params.ShortTermWeightWindow)
	sortedLongTermWeights, err := s.slideSortedLongTermWeights(base, block.LongTermWeight)
	if err != nil {
		return nil, err
	}
	next.SortedLongTermWeights = sortedLongTermWeights
	next.LongTermWeightWindow = appendToWindow(next.LongTermWeightWindow, block.LongTermWeight,
		s.params.LongTermWeightWindow)

	next.HardForkVotes = appendToWindow(next.HardForkVotes, block.Vote, s.hardForkManager.VoteWindow())
	next.HardForkVersion = s.hardForkManager.NextHardForkVersion(block.HardForkVersion, block.Height,
		next.HardForkVotes)

	if block.Height%s.params.DatasetEpochBlocks == 0 {
		next.SeedHashes = appendToWindow(next.SeedHashes,
			externalapi.SeedHash{Height: block.Height, Hash: block.Hash}, maxSeedHashes)
	}

	for _, createdOutput := range block.CreatedOutputs {
		count := next.OutputAmountIndex[createdOutput.AmountBucket]
		if createdOutput.GlobalIndex != count {
			return nil, errors.Wrapf(ruleerrors.ErrCorruptedWindow, "output of amount %d was assigned "+
				"index %d but the bucket holds %d outputs", createdOutput.AmountBucket,
				createdOutput.GlobalIndex, count)
		}
		next.OutputAmountIndex[createdOutput.AmountBucket] = count + 1
	}

	for _, keyImage := range block.KeyImages {
		next.KeyImageSet.Add(keyImage[:])
	}

	nextDifficulty, err := s.NextDifficulty(next)
	if err != nil {
		return nil, err
	}
	next.NextDifficulty = *nextDifficulty
	next.EffectiveMedianWeight = s.weightManager.EffectiveMedianWeight(next.HardForkVersion,
		next.BlockWeightWindow, next.SortedLongTermWeights)

	return next, nil
}

// slideSortedLongTermWeights returns the sorted long term weights of base
// with weight added and the entry leaving the window removed
func (s *chainContextStore) slideSortedLongTermWeights(base *externalapi.ChainContext,
	weight uint64) ([]uint64, error) {

	sorted := base.SortedLongTermWeights
	if uint64(len(base.LongTermWeightWindow)) >= s.params.LongTermWeightWindow {
		evicted := base.LongTermWeightWindow[uint64(len(base.LongTermWeightWindow))-s.params.LongTermWeightWindow]
		var ok bool
		sorted, ok = mathutil.RemoveSorted(sorted, evicted)
		if !ok {
			return nil, errors.Wrapf(ruleerrors.ErrCorruptedWindow, "long term weight %d leaving the "+
				"window is not in its sorted copy", evicted)
		}
	}
	return mathutil.InsertSorted(sorted, weight), nil
}

// appendToWindow appends value to window and drops the oldest entries
// beyond maxLength
func appendToWindow[T any](window []T, value T, maxLength uint64) []T {
	window = append(window, value)
	if uint64(len(window)) > maxLength {
		window = window[uint64(len(window))-maxLength:]
	}
	return window
}

// checkWindows checks the length and parallelism invariants of the windows
// of chainContext
func (s *chainContextStore) checkWindows(chainContext *externalapi.ChainContext) error {
	windows := []struct {
		name      string
		length    int
		maxLength uint64
	}{
		{"timestamp", len(chainContext.TimestampWindow), s.params.TimestampCheckWindow},
		{"difficulty", len(chainContext.DifficultyTimestamps), s.params.DifficultyWindow + s.params.DifficultyLag},
		{"short term weight", len(chainContext.BlockWeightWindow), s.params.ShortTermWeightWindow},
		{"long term weight", len(chainContext.LongTermWeightWindow), s.params.LongTermWeightWindow},
		{"hard fork vote", len(chainContext.HardForkVotes), s.hardForkManager.VoteWindow()},
	}
	for _, window := range windows {
		if uint64(window.length) > window.maxLength {
			return errors.Wrapf(ruleerrors.ErrCorruptedWindow, "%s window holds %d entries "+
				"which is above its length %d", window.name, window.length, window.maxLength)
		}
	}
	if len(chainContext.SortedLongTermWeights) != len(chainContext.LongTermWeightWindow) {
		return errors.Wrapf(ruleerrors.ErrCorruptedWindow, "long term weight window has %d entries "+
			"but its sorted copy %d", len(chainContext.LongTermWeightWindow),
			len(chainContext.SortedLongTermWeights))
	}
	if len(chainContext.DifficultyTimestamps) != len(chainContext.DifficultyCumulative) {
		return errors.Wrapf(ruleerrors.ErrCorruptedWindow, "difficulty window has %d timestamps "+
			"but %d cumulative difficulties", len(chainContext.DifficultyTimestamps),
			len(chainContext.DifficultyCumulative))
	}
	return nil
}
