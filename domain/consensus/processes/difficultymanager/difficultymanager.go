package difficultymanager

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// maxDifficulty is the largest difficulty the protocol can represent
var maxDifficulty = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// difficultyManager provides a method to resolve the
// difficulty value of the next block
type difficultyManager struct {
	params *chainparams.Params
}

// New instantiates a new DifficultyManager
func New(params *chainparams.Params) model.DifficultyManager {
	return &difficultyManager{
		params: params,
	}
}

// NextDifficulty returns the difficulty required of the block following
// the given window. timestamps and cumulativeDifficulties are parallel and
// ordered oldest first; only the oldest DifficultyWindow entries are used,
// so the newest DifficultyLag blocks of a full window do not count.
//
// The timestamps are sorted and DifficultyCut outliers are dropped at both
// ends before the work done over the remaining time span is scaled to the
// target block time, rounding up.
func (dm *difficultyManager) NextDifficulty(timestamps []uint64, cumulativeDifficulties []uint256.Int,
	version externalapi.HardForkVersion) (*uint256.Int, error) {

	if len(timestamps) != len(cumulativeDifficulties) {
		return nil, errors.Wrapf(ruleerrors.ErrCorruptedWindow, "difficulty window has %d timestamps "+
			"but %d cumulative difficulties", len(timestamps), len(cumulativeDifficulties))
	}

	window := dm.params.DifficultyWindow
	length := uint64(len(timestamps))
	if length > window {
		length = window
	}
	if length <= 1 {
		return uint256.NewInt(1), nil
	}

	sortedTimestamps := make([]uint64, length)
	copy(sortedTimestamps, timestamps[:length])
	sort.Slice(sortedTimestamps, func(i, j int) bool { return sortedTimestamps[i] < sortedTimestamps[j] })

	cutBegin, cutEnd := dm.cutBounds(length)

	timeSpan := sortedTimestamps[cutEnd-1] - sortedTimestamps[cutBegin]
	if timeSpan == 0 {
		timeSpan = 1
	}

	if cumulativeDifficulties[cutEnd-1].Lt(&cumulativeDifficulties[cutBegin]) {
		return nil, errors.Wrapf(ruleerrors.ErrCorruptedWindow, "cumulative difficulty decreases within "+
			"the difficulty window")
	}
	totalWork := new(uint256.Int).Sub(&cumulativeDifficulties[cutEnd-1], &cumulativeDifficulties[cutBegin])

	target := uint256.NewInt(dm.params.TargetTime(version))
	spanMinusOne := uint256.NewInt(timeSpan - 1)
	scaled, overflow := new(uint256.Int).MulOverflow(totalWork, target)
	if !overflow {
		scaled, overflow = new(uint256.Int).AddOverflow(scaled, spanMinusOne)
	}
	if overflow {
		return nil, errors.Wrapf(ruleerrors.ErrNumericOverflow, "difficulty computation overflowed")
	}
	next := scaled.Div(scaled, uint256.NewInt(timeSpan))
	if next.Gt(maxDifficulty) {
		return nil, errors.Wrapf(ruleerrors.ErrNumericOverflow, "next difficulty %s exceeds 128 bits", next.Dec())
	}
	return next, nil
}

// cutBounds returns the half-open range of sorted timestamps left after
// dropping the outliers of a window of the given length
func (dm *difficultyManager) cutBounds(length uint64) (begin, end uint64) {
	kept := dm.params.DifficultyWindow - 2*dm.params.DifficultyCut
	if length <= kept {
		return 0, length
	}
	begin = (length - kept + 1) / 2
	return begin, begin + kept
}
