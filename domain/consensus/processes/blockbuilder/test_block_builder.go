package blockbuilder

import (
	"math"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/model/testapi"
	"github.com/ringnet/ringd/domain/consensus/utils/consensushashing"
	"github.com/ringnet/ringd/infrastructure/logger"
)

type testBlockBuilder struct {
	*blockBuilder
	powManager model.PowManager
}

// NewTestBlockBuilder creates an instance of a TestBlockBuilder
func NewTestBlockBuilder(baseBlockBuilder model.BlockBuilder, powManager model.PowManager) testapi.TestBlockBuilder {
	return &testBlockBuilder{
		blockBuilder: baseBlockBuilder.(*blockBuilder),
		powManager:   powManager,
	}
}

// BuildSolvedBlock builds a block like BuildBlock does and searches a nonce
// that satisfies the difficulty required by chainContext
func (bb *testBlockBuilder) BuildSolvedBlock(chainContext *externalapi.ChainContext, minerKey externalapi.ECPoint,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "BuildSolvedBlock")
	defer onEnd()

	block, err := bb.buildBlock(chainContext, minerKey, transactions)
	if err != nil {
		return nil, err
	}
	if bb.params.SkipProofOfWork {
		return block, nil
	}

	height := chainContext.NextHeight()
	for nonce := uint64(0); nonce <= math.MaxUint32; nonce++ {
		block.Header.Nonce = uint32(nonce)
		blob, err := consensushashing.BlockHashingBlob(block)
		if err != nil {
			return nil, err
		}
		isValid, err := bb.powManager.VerifyPow(blob, height,
			&chainContext.NextDifficulty, chainContext)
		if err != nil {
			return nil, err
		}
		if isValid {
			return block, nil
		}
	}
	return nil, errors.Errorf("no nonce solves difficulty %s", chainContext.NextDifficulty.Dec())
}
