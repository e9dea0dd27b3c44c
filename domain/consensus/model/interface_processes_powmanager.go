package model

import (
	"github.com/holiman/uint256"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

// PowManager computes and checks proof-of-work hashes with the algorithm
// active at a given height
type PowManager interface {
	PowHash(blockHashingBlob []byte, height uint64, chainContext *externalapi.ChainContext) (*externalapi.DomainHash, error)
	PowSeed(height uint64, chainContext *externalapi.ChainContext) (*externalapi.DomainHash, error)
	CheckPowHash(powHash *externalapi.DomainHash, difficulty *uint256.Int) bool
	VerifyPow(blockHashingBlob []byte, height uint64, difficulty *uint256.Int,
		chainContext *externalapi.ChainContext) (bool, error)
}
