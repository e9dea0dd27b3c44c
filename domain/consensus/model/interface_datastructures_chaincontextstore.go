package model

import (
	"github.com/holiman/uint256"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

// ChainContextStore owns the chain context. Reads are lock-free snapshots;
// Commit must be called by a single writer, one height at a time. The
// writer passed to Commit, if any, has persisted the block before the new
// context is published.
type ChainContextStore interface {
	Current() *externalapi.ChainContext
	Commit(block *externalapi.AcceptedBlock, writer ChainStateWriter) (*externalapi.ChainContext, error)
	IsHalted() bool

	NextDifficulty(chainContext *externalapi.ChainContext) (*uint256.Int, error)
	MedianTimestamp(chainContext *externalapi.ChainContext) uint64
	EffectiveWeightLimit(chainContext *externalapi.ChainContext) uint64
}
