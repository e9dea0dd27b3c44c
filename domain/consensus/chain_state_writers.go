package consensus

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

// chainStateWriters hands accepted blocks to several writers in order and
// stops at the first failure
type chainStateWriters []model.ChainStateWriter

func (writers chainStateWriters) PersistAcceptedBlock(block *externalapi.AcceptedBlock,
	chainContext *externalapi.ChainContext) error {

	for i, writer := range writers {
		err := writer.PersistAcceptedBlock(block, chainContext)
		if err != nil {
			return errors.Wrapf(err, "chain state writer %d failed to persist block %s", i, block.Hash)
		}
	}
	return nil
}
