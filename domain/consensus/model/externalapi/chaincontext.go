package externalapi

import (
	"github.com/holiman/uint256"
)

// SeedHash is the hash of a block at a proof-of-work seed height
type SeedHash struct {
	Height uint64
	Hash   *DomainHash
}

// ChainContext is an immutable snapshot of the state needed to validate
// the block at Height+1 and transactions on top of it. Snapshots must not be
// modified once published; use Clone to derive a new one.
//
// All windows are ordered oldest first and never exceed their configured
// length.
type ChainContext struct {
	Height          uint64
	TopHash         *DomainHash
	HardForkVersion HardForkVersion

	// Difficulty is the difficulty the top block was mined at and
	// NextDifficulty the one required of the block at Height+1.
	Difficulty           uint256.Int
	NextDifficulty       uint256.Int
	CumulativeDifficulty uint256.Int

	AlreadyGeneratedCoins uint64

	TimestampWindow []uint64

	// DifficultyTimestamps and DifficultyCumulative are parallel windows
	// feeding the difficulty algorithm.
	DifficultyTimestamps []uint64
	DifficultyCumulative []uint256.Int

	BlockWeightWindow    []uint64
	LongTermWeightWindow []uint64

	// SortedLongTermWeights holds the entries of LongTermWeightWindow in
	// ascending order
	SortedLongTermWeights []uint64
	EffectiveMedianWeight uint64

	// HardForkVotes holds the votes of the last blocks in the voting window
	HardForkVotes []HardForkVersion

	// SeedHashes holds the most recent proof-of-work seeds, oldest first
	SeedHashes []SeedHash

	// OutputAmountIndex maps an amount bucket to the number of outputs
	// created in it. Confidential outputs live in bucket zero.
	OutputAmountIndex map[uint64]uint64

	// KeyImageSet commits to every key image spent up to Height
	KeyImageSet Multiset
}

// IsEmpty returns whether no block was committed yet. An empty context is
// extended by the genesis block.
func (context *ChainContext) IsEmpty() bool {
	return context.TopHash == nil
}

// NextHeight returns the height of the block that would extend this context
func (context *ChainContext) NextHeight() uint64 {
	if context.IsEmpty() {
		return 0
	}
	return context.Height + 1
}

// TopTimestamp returns the timestamp of the top block, or zero if the
// context is empty
func (context *ChainContext) TopTimestamp() uint64 {
	if len(context.TimestampWindow) == 0 {
		return 0
	}
	return context.TimestampWindow[len(context.TimestampWindow)-1]
}

// OutputCount returns the number of outputs in the given amount bucket
func (context *ChainContext) OutputCount(amount uint64) uint64 {
	return context.OutputAmountIndex[amount]
}

// KeyImageSetCommitment returns the finalized commitment to the spent key
// image set
func (context *ChainContext) KeyImageSetCommitment() *DomainHash {
	if context.KeyImageSet == nil {
		return nil
	}
	return context.KeyImageSet.Hash()
}

// Clone returns a deep copy of the context that is safe to modify
func (context *ChainContext) Clone() *ChainContext {
	outputAmountIndexClone := make(map[uint64]uint64, len(context.OutputAmountIndex))
	for amount, count := range context.OutputAmountIndex {
		outputAmountIndexClone[amount] = count
	}

	var keyImageSetClone Multiset
	if context.KeyImageSet != nil {
		keyImageSetClone = context.KeyImageSet.Clone()
	}

	return &ChainContext{
		Height:                context.Height,
		TopHash:               context.TopHash,
		HardForkVersion:       context.HardForkVersion,
		Difficulty:            context.Difficulty,
		NextDifficulty:        context.NextDifficulty,
		CumulativeDifficulty:  context.CumulativeDifficulty,
		AlreadyGeneratedCoins: context.AlreadyGeneratedCoins,
		TimestampWindow:       append([]uint64(nil), context.TimestampWindow...),
		DifficultyTimestamps:  append([]uint64(nil), context.DifficultyTimestamps...),
		DifficultyCumulative:  append([]uint256.Int(nil), context.DifficultyCumulative...),
		BlockWeightWindow:     append([]uint64(nil), context.BlockWeightWindow...),
		LongTermWeightWindow:  append([]uint64(nil), context.LongTermWeightWindow...),
		SortedLongTermWeights: append([]uint64(nil), context.SortedLongTermWeights...),
		EffectiveMedianWeight: context.EffectiveMedianWeight,
		HardForkVotes:         append([]HardForkVersion(nil), context.HardForkVotes...),
		SeedHashes:            append([]SeedHash(nil), context.SeedHashes...),
		OutputAmountIndex:     outputAmountIndexClone,
		KeyImageSet:           keyImageSetClone,
	}
}

// Multiset is a rolling set commitment that supports adding and removing
// elements in any order
type Multiset interface {
	Add(data []byte)
	Remove(data []byte)
	Hash() *DomainHash
	Serialize() []byte
	Clone() Multiset
}
