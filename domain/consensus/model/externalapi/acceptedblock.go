package externalapi

import (
	"github.com/holiman/uint256"
)

// AcceptedBlock is everything the chain context store and the storage layer
// need to know about a block that passed validation.
type AcceptedBlock struct {
	Height          uint64
	Hash            *DomainHash
	Header          *DomainBlockHeader
	HardForkVersion HardForkVersion
	Vote            HardForkVersion
	Weight          uint64
	LongTermWeight  uint64
	Difficulty      uint256.Int
	GeneratedCoins  uint64

	KeyImages      []KeyImage
	CreatedOutputs []*CreatedOutput
}

// CreatedOutput is an output created by an accepted block along with the
// global index it was assigned in its amount bucket
type CreatedOutput struct {
	AmountBucket uint64
	GlobalIndex  uint64
	Output       *OutputCommitment
}
