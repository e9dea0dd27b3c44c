package externalapi

// BlockCandidate is a block along with the results of the checks that do
// not need its parent to be committed. Producing it is the expensive part
// of block verification and may run concurrently for many blocks.
type BlockCandidate struct {
	Block       *DomainBlock
	Hash        *DomainHash
	HashingBlob []byte
	// Height is the height claimed by the miner transaction
	Height uint64
	// Version is the hard fork version claimed by the header
	Version HardForkVersion
	Weight  uint64

	// PowHash is nil if the seed of Height was not known yet
	PowHash *DomainHash
	// PowSeed is the seed PowHash was computed with, nil for algorithms
	// without a seed
	PowSeed *DomainHash

	// SignatureErrors holds the signature verification result of every
	// transaction, in order. It is nil if the ring members of some
	// transaction could not be resolved yet, in which case signatures are
	// verified in context.
	SignatureErrors []error
}
