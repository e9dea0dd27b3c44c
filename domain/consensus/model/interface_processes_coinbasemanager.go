package model

import "github.com/ringnet/ringd/domain/consensus/model/externalapi"

// CoinbaseManager exposes the emission and fee rules
type CoinbaseManager interface {
	BaseReward(alreadyGeneratedCoins uint64, version externalapi.HardForkVersion) uint64
	BlockReward(baseReward uint64, blockWeight uint64, medianWeight uint64) (uint64, error)
	MinimumFee(transactionWeight uint64, chainContext *externalapi.ChainContext) (uint64, error)
}
