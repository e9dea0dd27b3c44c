package testapi

import (
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/datastructures/keyimagestore"
	"github.com/ringnet/ringd/domain/consensus/datastructures/outputstore"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/util/mstime"
)

// TestConsensus wraps the Consensus interface with some methods that are needed by tests only
type TestConsensus interface {
	externalapi.Consensus

	Params() *chainparams.Params
	Clock() *mstime.FixedClock

	// AddGenesisBlock verifies and commits the genesis block of the network
	AddGenesisBlock() error

	// BuildBlock sets the clock to one target block time after the top
	// block, then builds and solves a block on top of the current chain
	// context
	BuildBlock(minerKey externalapi.ECPoint, transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)

	// AddBlock builds a block like BuildBlock does and commits it. It
	// fails unless the block is accepted.
	AddBlock(minerKey externalapi.ECPoint, transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)

	KeyImageStore() *keyimagestore.KeyImageStore
	OutputStore() *outputstore.OutputStore

	BlockBuilder() TestBlockBuilder
	BlockProcessor() model.BlockProcessor
	BlockValidator() model.BlockValidator
	TransactionValidator() model.TransactionValidator
	ChainContextStore() model.ChainContextStore
	CoinbaseManager() model.CoinbaseManager
	DifficultyManager() model.DifficultyManager
	HardForkManager() model.HardForkManager
	PastMedianTimeManager() model.PastMedianTimeManager
	PowManager() model.PowManager
	WeightManager() model.WeightManager
}
