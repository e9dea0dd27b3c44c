package model

import "github.com/ringnet/ringd/domain/consensus/model/externalapi"

// WeightManager computes block weight limits, effective median weights and
// long term block weights
type WeightManager interface {
	PenaltyFreeZone(version externalapi.HardForkVersion) uint64
	EffectiveMedianWeight(version externalapi.HardForkVersion, shortTermWindow []uint64, sortedLongTermWeights []uint64) uint64
	LongTermWeight(version externalapi.HardForkVersion, blockWeight uint64, sortedLongTermWeights []uint64) uint64
	EffectiveWeightLimit(chainContext *externalapi.ChainContext) uint64
	MaxTransactionWeight(version externalapi.HardForkVersion) uint64
}
