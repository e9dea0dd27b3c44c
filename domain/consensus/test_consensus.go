package consensus

import (
	"time"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/datastructures/keyimagestore"
	"github.com/ringnet/ringd/domain/consensus/datastructures/outputstore"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/model/testapi"
	"github.com/ringnet/ringd/util/mstime"
)

type testConsensus struct {
	*managers

	testName     string
	fixedClock   *mstime.FixedClock
	blockBuilder testapi.TestBlockBuilder
}

func (tc *testConsensus) Params() *chainparams.Params {
	return tc.params
}

func (tc *testConsensus) Clock() *mstime.FixedClock {
	return tc.fixedClock
}

func (tc *testConsensus) AddGenesisBlock() error {
	if tc.params.GenesisBlock == nil {
		return errors.Errorf("%s has no genesis block", tc.params.Name)
	}
	return tc.insertBlock(tc.params.GenesisBlock.Clone())
}

func (tc *testConsensus) BuildBlock(minerKey externalapi.ECPoint,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	chainContext := tc.ChainContext()
	if !chainContext.IsEmpty() {
		targetTime := tc.params.TargetTime(chainContext.HardForkVersion)
		nextTimestamp := chainContext.TopTimestamp() + targetTime
		tc.fixedClock.Set(time.Unix(int64(nextTimestamp), 0))
	}
	return tc.blockBuilder.BuildSolvedBlock(chainContext, minerKey, transactions)
}

func (tc *testConsensus) AddBlock(minerKey externalapi.ECPoint,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	block, err := tc.BuildBlock(minerKey, transactions)
	if err != nil {
		return nil, err
	}
	err = tc.insertBlock(block)
	if err != nil {
		return nil, err
	}
	return block, nil
}

func (tc *testConsensus) insertBlock(block *externalapi.DomainBlock) error {
	outcome, err := tc.VerifyBlock(block)
	if err != nil {
		return err
	}
	if outcome.Status != externalapi.StatusAccepted {
		return errors.Errorf("%s: block was not accepted: %s", tc.testName, outcome)
	}
	return nil
}

func (tc *testConsensus) KeyImageStore() *keyimagestore.KeyImageStore {
	return tc.keyImageStore
}

func (tc *testConsensus) OutputStore() *outputstore.OutputStore {
	return tc.outputStore
}

func (tc *testConsensus) BlockBuilder() testapi.TestBlockBuilder {
	return tc.blockBuilder
}

func (tc *testConsensus) BlockProcessor() model.BlockProcessor {
	return tc.blockProcessor
}

func (tc *testConsensus) BlockValidator() model.BlockValidator {
	return tc.blockValidator
}

func (tc *testConsensus) TransactionValidator() model.TransactionValidator {
	return tc.transactionValidator
}

func (tc *testConsensus) ChainContextStore() model.ChainContextStore {
	return tc.chainContextStore
}

func (tc *testConsensus) CoinbaseManager() model.CoinbaseManager {
	return tc.coinbaseManager
}

func (tc *testConsensus) DifficultyManager() model.DifficultyManager {
	return tc.difficultyManager
}

func (tc *testConsensus) HardForkManager() model.HardForkManager {
	return tc.hardForkManager
}

func (tc *testConsensus) PastMedianTimeManager() model.PastMedianTimeManager {
	return tc.pastMedianTimeManager
}

func (tc *testConsensus) PowManager() model.PowManager {
	return tc.powManager
}

func (tc *testConsensus) WeightManager() model.WeightManager {
	return tc.weightManager
}
