package blockprocessor

import (
	"sync"

	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
)

// blockProcessor is responsible for processing incoming blocks and
// committing them to the chain context
type blockProcessor struct {
	params *chainparams.Params

	blockValidator    model.BlockValidator
	weightManager     model.WeightManager
	chainContextStore model.ChainContextStore
	chainStateWriter  model.ChainStateWriter

	// insertLock makes reading the context a block is validated against
	// and committing the block one step
	insertLock sync.Mutex
}

// New instantiates a new BlockProcessor. chainStateWriter persists every
// accepted block before its context is published. It may be nil, in which
// case accepted blocks are only committed to the chain context store.
func New(
	params *chainparams.Params,
	blockValidator model.BlockValidator,
	weightManager model.WeightManager,
	chainContextStore model.ChainContextStore,
	chainStateWriter model.ChainStateWriter) model.BlockProcessor {

	return &blockProcessor{
		params:            params,
		blockValidator:    blockValidator,
		weightManager:     weightManager,
		chainContextStore: chainContextStore,
		chainStateWriter:  chainStateWriter,
	}
}
