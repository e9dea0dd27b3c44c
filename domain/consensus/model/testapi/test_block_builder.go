package testapi

import (
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

// TestBlockBuilder adds to the main BlockBuilder methods required by tests
type TestBlockBuilder interface {
	model.BlockBuilder

	// BuildSolvedBlock builds a block whose proof of work is valid on top
	// of chainContext
	BuildSolvedBlock(chainContext *externalapi.ChainContext, minerKey externalapi.ECPoint,
		transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)
}
