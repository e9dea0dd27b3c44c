package weightmanager

import (
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/mathutil"
)

const (
	penaltyFreeZoneV1 = 20000
	penaltyFreeZoneV2 = 60000
	penaltyFreeZoneV5 = 300000

	// longTermMedianCapFactor caps the effective median relative to the
	// long term median
	longTermMedianCapFactor = 50
)

type weightManager struct {
	params *chainparams.Params
}

// New instantiates a new WeightManager
func New(params *chainparams.Params) model.WeightManager {
	return &weightManager{params: params}
}

// PenaltyFreeZone returns the block weight up to which miners get the full
// reward regardless of the median
func (wm *weightManager) PenaltyFreeZone(version externalapi.HardForkVersion) uint64 {
	switch {
	case version == externalapi.HardForkV1:
		return penaltyFreeZoneV1
	case version.InRange(externalapi.HardForkV2, externalapi.HardForkV5):
		return penaltyFreeZoneV2
	default:
		return penaltyFreeZoneV5
	}
}

// EffectiveMedianWeight returns the median weight used by the reward
// penalty and the block weight limit of the next block. Before V10 it is
// the short term median. From V10 the long term median bounds how far the
// short term median may grow. The short term median never drops below the
// penalty free zone. sortedLongTermWeights must be in ascending order.
func (wm *weightManager) EffectiveMedianWeight(version externalapi.HardForkVersion,
	shortTermWindow []uint64, sortedLongTermWeights []uint64) uint64 {

	shortTermMedian := mathutil.Median(shortTermWindow)
	if version.InRange(externalapi.HardForkV1, externalapi.HardForkV10) {
		return mathutil.Max(shortTermMedian, wm.PenaltyFreeZone(version))
	}

	longTermMedian := mathutil.Max(mathutil.MedianOfSorted(sortedLongTermWeights), penaltyFreeZoneV5)
	var effectiveMedian uint64
	if version.InRange(externalapi.HardForkV10, externalapi.HardForkV15) {
		effectiveMedian = mathutil.Min(mathutil.Max(penaltyFreeZoneV5, shortTermMedian),
			longTermMedianCapFactor*longTermMedian)
	} else {
		effectiveMedian = mathutil.Min(mathutil.Max(longTermMedian, shortTermMedian),
			longTermMedianCapFactor*longTermMedian)
	}
	return mathutil.Max(effectiveMedian, wm.PenaltyFreeZone(version))
}

// LongTermWeight returns the weight a block of blockWeight contributes to
// the long term window. Before V10 it is the block weight itself.
func (wm *weightManager) LongTermWeight(version externalapi.HardForkVersion,
	blockWeight uint64, sortedLongTermWeights []uint64) uint64 {

	if version.InRange(externalapi.HardForkV1, externalapi.HardForkV10) {
		return blockWeight
	}

	longTermMedian := mathutil.Max(wm.PenaltyFreeZone(version), mathutil.MedianOfSorted(sortedLongTermWeights))
	var shortTermConstraint, adjustedBlockWeight uint64
	if version.InRange(externalapi.HardForkV10, externalapi.HardForkV15) {
		shortTermConstraint = longTermMedian + longTermMedian*2/5
		adjustedBlockWeight = blockWeight
	} else {
		shortTermConstraint = longTermMedian + longTermMedian*7/10
		adjustedBlockWeight = mathutil.Max(blockWeight, longTermMedian*10/17)
	}
	return mathutil.Min(shortTermConstraint, adjustedBlockWeight)
}

// EffectiveWeightLimit returns the maximum weight of the block extending
// chainContext
func (wm *weightManager) EffectiveWeightLimit(chainContext *externalapi.ChainContext) uint64 {
	return 2 * chainContext.EffectiveMedianWeight
}

// MaxTransactionWeight returns the largest weight a single transaction may
// have under the given fork
func (wm *weightManager) MaxTransactionWeight(version externalapi.HardForkVersion) uint64 {
	penaltyFreeZone := wm.PenaltyFreeZone(version)
	if version >= wm.params.PerByteFeeVersion {
		penaltyFreeZone /= 2
	}
	return penaltyFreeZone - wm.params.CoinbaseBlobReservedSize
}
