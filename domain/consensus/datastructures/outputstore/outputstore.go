package outputstore

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
)

// OutputStore is an in-memory index of created outputs by amount bucket and
// global index
type OutputStore struct {
	lock    sync.RWMutex
	buckets map[uint64][]*externalapi.OutputCommitment
}

// New instantiates a new OutputStore
func New() *OutputStore {
	return &OutputStore{
		buckets: make(map[uint64][]*externalapi.OutputCommitment),
	}
}

// Resolve returns the output at globalIndex of the given amount bucket
func (store *OutputStore) Resolve(amount uint64, globalIndex uint64) (*externalapi.OutputCommitment, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()

	bucket := store.buckets[amount]
	if globalIndex >= uint64(len(bucket)) {
		return nil, errors.Wrapf(ruleerrors.ErrOutputNotFound, "output %d of amount %d", globalIndex, amount)
	}
	return bucket[globalIndex], nil
}

// Add appends output to its amount bucket. Outputs must be added in global
// index order.
func (store *OutputStore) Add(amount uint64, globalIndex uint64, output *externalapi.OutputCommitment) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	return store.add(amount, globalIndex, output)
}

func (store *OutputStore) add(amount uint64, globalIndex uint64, output *externalapi.OutputCommitment) error {
	bucket := store.buckets[amount]
	if globalIndex != uint64(len(bucket)) {
		return errors.Errorf("output of amount %d added at index %d but the bucket holds %d outputs",
			amount, globalIndex, len(bucket))
	}
	store.buckets[amount] = append(bucket, output)
	return nil
}

// PersistAcceptedBlock indexes the outputs created by block
func (store *OutputStore) PersistAcceptedBlock(block *externalapi.AcceptedBlock, _ *externalapi.ChainContext) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	for _, createdOutput := range block.CreatedOutputs {
		err := store.add(createdOutput.AmountBucket, createdOutput.GlobalIndex, createdOutput.Output)
		if err != nil {
			return err
		}
	}
	return nil
}

var _ model.OutputIndex = (*OutputStore)(nil)
var _ model.ChainStateWriter = (*OutputStore)(nil)
