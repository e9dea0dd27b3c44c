package consensushashing

import (
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/hashes"
)

// TreeHash computes the merkle root of hashes the way the block hashing
// blob requires: the lowest level is padded from the left so that the rest
// of the tree is complete.
func TreeHash(leaves []*externalapi.DomainHash) *externalapi.DomainHash {
	switch len(leaves) {
	case 0:
		return &externalapi.DomainHash{}
	case 1:
		return leaves[0]
	case 2:
		return hashPair(leaves[0], leaves[1])
	}

	count := len(leaves)
	width := treeHashWidth(count)

	level := make([]*externalapi.DomainHash, width)
	carried := 2*width - count
	copy(level, leaves[:carried])
	for i, j := carried, carried; j < width; i, j = i+2, j+1 {
		level[j] = hashPair(leaves[i], leaves[i+1])
	}

	for width > 2 {
		width >>= 1
		for i, j := 0, 0; j < width; i, j = i+2, j+1 {
			level[j] = hashPair(level[i], level[i+1])
		}
	}
	return hashPair(level[0], level[1])
}

// treeHashWidth returns the largest power of two strictly smaller than count
func treeHashWidth(count int) int {
	width := 2
	for width < count {
		width <<= 1
	}
	return width >> 1
}

func hashPair(a, b *externalapi.DomainHash) *externalapi.DomainHash {
	return hashes.Keccak256(a.ByteSlice(), b.ByteSlice())
}
