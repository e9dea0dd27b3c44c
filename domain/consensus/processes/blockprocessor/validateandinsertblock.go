package blockprocessor

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/processes/blockprocessor/blocklogger"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/infrastructure/logger"
)

// ValidateAndInsertBlock validates the given block against the current
// chain context and, if valid, commits it
func (bp *blockProcessor) ValidateAndInsertBlock(block *externalapi.DomainBlock) (*externalapi.ChainContext, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateAndInsertBlock")
	defer onEnd()

	candidate, err := bp.blockValidator.ValidateBlockInIsolation(block, bp.chainContextStore.Current())
	if err != nil {
		return nil, err
	}
	return bp.insertBlockCandidate(candidate)
}

// InsertBlockCandidate validates a candidate produced by
// ValidateBlockInIsolation against the current chain context and, if
// valid, commits it
func (bp *blockProcessor) InsertBlockCandidate(candidate *externalapi.BlockCandidate) (*externalapi.ChainContext, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "InsertBlockCandidate")
	defer onEnd()

	return bp.insertBlockCandidate(candidate)
}

func (bp *blockProcessor) insertBlockCandidate(candidate *externalapi.BlockCandidate) (*externalapi.ChainContext, error) {
	bp.insertLock.Lock()
	defer bp.insertLock.Unlock()

	if bp.chainContextStore.IsHalted() {
		return nil, errors.Wrapf(ruleerrors.ErrStoreHalted, "cannot insert block %s", candidate.Hash)
	}

	chainContext := bp.chainContextStore.Current()
	err := bp.blockValidator.ValidateBlockInContext(candidate, chainContext)
	if err != nil {
		return nil, err
	}

	acceptedBlock, err := bp.AcceptedBlock(candidate, chainContext)
	if err != nil {
		return nil, err
	}

	newChainContext, err := bp.chainContextStore.Commit(acceptedBlock, bp.chainStateWriter)
	if err != nil {
		return nil, err
	}

	log.Debugf("Block %s committed at height %d", acceptedBlock.Hash, acceptedBlock.Height)
	blocklogger.LogBlock(candidate.Block, acceptedBlock.Height)

	return newChainContext, nil
}
