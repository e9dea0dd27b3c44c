package pow

import (
	"github.com/holiman/uint256"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/hashes"
	"golang.org/x/crypto/argon2"
)

// argon2Salt is the fixed salt of the argon2id proof of work
var argon2Salt = []byte("ringd/argon2id-pow")

// KeccakHash returns the legacy proof-of-work hash of a block hashing blob
func KeccakHash(blob []byte) *externalapi.DomainHash {
	return hashes.Keccak256(blob)
}

// Argon2idHash returns the memory-hard proof-of-work hash of a block
// hashing blob
func Argon2idHash(blob []byte, time, memoryKiB uint32) *externalapi.DomainHash {
	sum := argon2.IDKey(blob, argon2Salt, time, memoryKiB, 1, externalapi.DomainHashSize)
	hash, err := externalapi.NewDomainHashFromByteSlice(sum)
	if err != nil {
		panic(err)
	}
	return hash
}

// CheckProofOfWork returns whether hash, read as a little-endian 256-bit
// number, meets difficulty. That is the case when hash*difficulty does not
// overflow 256 bits.
func CheckProofOfWork(hash *externalapi.DomainHash, difficulty *uint256.Int) bool {
	if difficulty.IsZero() {
		return false
	}
	hashArray := hash.ByteArray()
	var bigEndian [externalapi.DomainHashSize]byte
	for i, b := range hashArray {
		bigEndian[len(bigEndian)-1-i] = b
	}
	value := new(uint256.Int).SetBytes32(bigEndian[:])
	_, overflow := new(uint256.Int).MulOverflow(value, difficulty)
	return !overflow
}

// SeedHeight returns the height of the block whose hash seeds the dataset
// used at height. Seeds change every epochBlocks blocks, lag blocks after
// the epoch boundary, so that the next dataset can be prepared in advance.
func SeedHeight(height, epochBlocks, lag uint64) uint64 {
	if height <= epochBlocks+lag {
		return 0
	}
	return (height - lag - 1) &^ (epochBlocks - 1)
}
