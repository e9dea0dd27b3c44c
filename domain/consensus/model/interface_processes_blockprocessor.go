package model

import "github.com/ringnet/ringd/domain/consensus/model/externalapi"

// BlockProcessor is responsible for processing incoming blocks
type BlockProcessor interface {
	ValidateAndInsertBlock(block *externalapi.DomainBlock) (*externalapi.ChainContext, error)
	InsertBlockCandidate(candidate *externalapi.BlockCandidate) (*externalapi.ChainContext, error)
	AcceptedBlock(candidate *externalapi.BlockCandidate, chainContext *externalapi.ChainContext) (*externalapi.AcceptedBlock, error)
}
