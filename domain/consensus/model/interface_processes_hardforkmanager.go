package model

import "github.com/ringnet/ringd/domain/consensus/model/externalapi"

// HardForkManager tracks fork votes and decides fork activations
type HardForkManager interface {
	CheckBlockVersion(header *externalapi.DomainBlockHeader, chainContext *externalapi.ChainContext) error
	NextHardForkVersion(current externalapi.HardForkVersion, lastHeight uint64,
		votes []externalapi.HardForkVersion) externalapi.HardForkVersion
	VoteWindow() uint64
}
