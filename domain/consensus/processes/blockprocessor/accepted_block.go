package blockprocessor

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/ringct"
)

// AcceptedBlock builds what committing candidate on top of chainContext
// changes: the key images it spends and the outputs it creates, with their
// global indices. candidate must have passed validation in context.
func (bp *blockProcessor) AcceptedBlock(candidate *externalapi.BlockCandidate,
	chainContext *externalapi.ChainContext) (*externalapi.AcceptedBlock, error) {

	block := candidate.Block
	height := chainContext.NextHeight()
	if candidate.Height != height {
		return nil, errors.Wrapf(ruleerrors.ErrOutOfOrderCommit, "block %s has height %d while the next "+
			"height is %d", candidate.Hash, candidate.Height, height)
	}

	generatedCoins, err := generatedCoins(block)
	if err != nil {
		return nil, err
	}

	builder := newOutputsBuilder(chainContext, height)
	confidentialMinerOutputs := chainContext.HardForkVersion >= bp.params.ConfidentialMinerOutputsVersion
	for _, output := range block.MinerTransaction.Outputs {
		bucket := output.Amount
		if confidentialMinerOutputs {
			bucket = 0
		}
		builder.add(bucket, output.Key, ringct.ZeroCommit(output.Amount), block.MinerTransaction.UnlockTime)
	}

	keyImages := make([]externalapi.KeyImage, 0)
	for _, tx := range block.Transactions {
		for _, input := range tx.Inputs {
			keyImages = append(keyImages, input.KeyImage)
		}
		for _, output := range tx.Outputs {
			if tx.IsConfidential() {
				builder.add(0, output.Key, *output.Commitment, tx.UnlockTime)
			} else {
				builder.add(output.Amount, output.Key, ringct.ZeroCommit(output.Amount), tx.UnlockTime)
			}
		}
	}

	return &externalapi.AcceptedBlock{
		Height:          height,
		Hash:            candidate.Hash,
		Header:          block.Header,
		HardForkVersion: chainContext.HardForkVersion,
		Vote:            externalapi.HardForkVersionFromVote(block.Header.MinorVersion),
		Weight:          candidate.Weight,
		LongTermWeight: bp.weightManager.LongTermWeight(chainContext.HardForkVersion, candidate.Weight,
			chainContext.SortedLongTermWeights),
		Difficulty:     chainContext.NextDifficulty,
		GeneratedCoins: generatedCoins,
		KeyImages:      keyImages,
		CreatedOutputs: builder.outputs,
	}, nil
}

// generatedCoins returns the miner outputs of block minus the fees it
// collects
func generatedCoins(block *externalapi.DomainBlock) (uint64, error) {
	minerOutputs := uint64(0)
	for _, output := range block.MinerTransaction.Outputs {
		if minerOutputs+output.Amount < minerOutputs {
			return 0, errors.Wrap(ruleerrors.ErrNumericOverflow, "miner outputs overflow")
		}
		minerOutputs += output.Amount
	}

	fees := uint64(0)
	for _, tx := range block.Transactions {
		if fees+tx.Fee < fees {
			return 0, errors.Wrap(ruleerrors.ErrNumericOverflow, "block fees overflow")
		}
		fees += tx.Fee
	}

	// A miner may claim less than the fees it collects
	if minerOutputs < fees {
		return 0, nil
	}
	return minerOutputs - fees, nil
}

// outputsBuilder assigns global indices to the outputs of a block, in
// block order, continuing the counts of chainContext
type outputsBuilder struct {
	chainContext *externalapi.ChainContext
	height       uint64
	added        map[uint64]uint64
	outputs      []*externalapi.CreatedOutput
}

func newOutputsBuilder(chainContext *externalapi.ChainContext, height uint64) *outputsBuilder {
	return &outputsBuilder{
		chainContext: chainContext,
		height:       height,
		added:        make(map[uint64]uint64),
		outputs:      make([]*externalapi.CreatedOutput, 0),
	}
}

func (b *outputsBuilder) add(bucket uint64, key externalapi.ECPoint, commitment externalapi.ECPoint, unlockTime uint64) {
	globalIndex := b.chainContext.OutputCount(bucket) + b.added[bucket]
	b.added[bucket]++
	b.outputs = append(b.outputs, &externalapi.CreatedOutput{
		AmountBucket: bucket,
		GlobalIndex:  globalIndex,
		Output: &externalapi.OutputCommitment{
			Key:        key,
			Commitment: commitment,
			Height:     b.height,
			UnlockTime: unlockTime,
		},
	})
}
