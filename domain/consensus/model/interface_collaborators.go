package model

import "github.com/ringnet/ringd/domain/consensus/model/externalapi"

// KeyImageIndex answers whether a key image was spent by a committed block
type KeyImageIndex interface {
	IsSpent(keyImage externalapi.KeyImage) (bool, error)
}

// OutputIndex resolves the index-th output of an amount bucket. It returns
// an error satisfying errors.Is(err, ruleerrors.ErrOutputNotFound) for
// outputs it does not know.
type OutputIndex interface {
	Resolve(amount uint64, index uint64) (*externalapi.OutputCommitment, error)
}

// ChainStateLoader loads the chain context persisted by a previous run
type ChainStateLoader interface {
	LoadChainContext() (*externalapi.ChainContext, error)
}

// ChainStateWriter persists accepted blocks along with the chain context
// they produced
type ChainStateWriter interface {
	PersistAcceptedBlock(block *externalapi.AcceptedBlock, chainContext *externalapi.ChainContext) error
}
