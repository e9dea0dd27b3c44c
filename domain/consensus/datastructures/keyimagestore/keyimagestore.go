package keyimagestore

import (
	"sync"

	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

// KeyImageStore is an in-memory index of spent key images
type KeyImageStore struct {
	lock  sync.RWMutex
	spent map[externalapi.KeyImage]struct{}
}

// New instantiates a new empty KeyImageStore
func New() *KeyImageStore {
	return &KeyImageStore{
		spent: make(map[externalapi.KeyImage]struct{}),
	}
}

// IsSpent returns whether keyImage was spent
func (kis *KeyImageStore) IsSpent(keyImage externalapi.KeyImage) (bool, error) {
	kis.lock.RLock()
	defer kis.lock.RUnlock()

	_, ok := kis.spent[keyImage]
	return ok, nil
}

// Add marks the given key images as spent
func (kis *KeyImageStore) Add(keyImages ...externalapi.KeyImage) {
	kis.lock.Lock()
	defer kis.lock.Unlock()

	for _, keyImage := range keyImages {
		kis.spent[keyImage] = struct{}{}
	}
}

// Count returns the number of spent key images
func (kis *KeyImageStore) Count() int {
	kis.lock.RLock()
	defer kis.lock.RUnlock()

	return len(kis.spent)
}

// PersistAcceptedBlock marks the key images of block as spent
func (kis *KeyImageStore) PersistAcceptedBlock(block *externalapi.AcceptedBlock, _ *externalapi.ChainContext) error {
	kis.Add(block.KeyImages...)
	return nil
}

var _ model.KeyImageIndex = (*KeyImageStore)(nil)
var _ model.ChainStateWriter = (*KeyImageStore)(nil)
