package model

import (
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

// BlockValidator exposes a set of validation classes, after which
// it's possible to determine whether a block is valid
type BlockValidator interface {
	ValidateBlockInIsolation(block *externalapi.DomainBlock, chainContext *externalapi.ChainContext) (*externalapi.BlockCandidate, error)
	ValidateHeaderInContext(candidate *externalapi.BlockCandidate, chainContext *externalapi.ChainContext) error
	ValidateBodyInContext(candidate *externalapi.BlockCandidate, chainContext *externalapi.ChainContext) error
	ValidateBlockInContext(candidate *externalapi.BlockCandidate, chainContext *externalapi.ChainContext) error
}
