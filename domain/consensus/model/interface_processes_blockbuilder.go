package model

import "github.com/ringnet/ringd/domain/consensus/model/externalapi"

// BlockBuilder is responsible for creating block templates on top of a
// chain context
type BlockBuilder interface {
	BuildBlock(chainContext *externalapi.ChainContext, minerKey externalapi.ECPoint,
		transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)
}
