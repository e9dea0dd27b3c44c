package verifiedtxcache

import (
	"github.com/decred/dcrd/lru"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

// verifiedTransactionCache remembers the hashes of the most recent
// transactions whose signatures verified
type verifiedTransactionCache struct {
	cache lru.Cache
}

// New instantiates a new VerifiedTransactionCache holding up to size
// transaction hashes
func New(size uint) model.VerifiedTransactionCache {
	return &verifiedTransactionCache{
		cache: lru.NewCache(size),
	}
}

func (vtc *verifiedTransactionCache) Add(transactionHash *externalapi.DomainHash) {
	vtc.cache.Add(*transactionHash)
}

func (vtc *verifiedTransactionCache) Contains(transactionHash *externalapi.DomainHash) bool {
	return vtc.cache.Contains(*transactionHash)
}
